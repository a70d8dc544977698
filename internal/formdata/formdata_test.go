package formdata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasbridge/oasbridge/internal/formdata"
	"github.com/oasbridge/oasbridge/internal/schema"
)

func TestParseQuery(t *testing.T) {
	fields := formdata.ParseQuery("a=1&b=two&a=3&empty=&flag")
	assert.Equal(t, []formdata.Field{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "two"},
		{Key: "a", Value: "3"},
		{Key: "empty", Value: ""},
		{Key: "flag", Value: ""},
	}, fields)
}

func TestParseQueryEscapes(t *testing.T) {
	fields := formdata.ParseQuery("name=Ada%20Lovelace&bad=%zz")
	// The undecodable pair is dropped, matching net/url.
	assert.Equal(t, []formdata.Field{{Key: "name", Value: "Ada Lovelace"}}, fields)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		fields []formdata.Field
		obj    *schema.Schema
		want   map[string]any
	}{
		{
			name:   "number from text",
			fields: []formdata.Field{{Key: "n", Value: "42"}},
			obj:    schema.Object(schema.Prop("n", schema.Number())),
			want:   map[string]any{"n": float64(42)},
		},
		{
			name:   "boolean false",
			fields: []formdata.Field{{Key: "b", Value: "false"}},
			obj:    schema.Object(schema.Prop("b", schema.Boolean())),
			want:   map[string]any{"b": false},
		},
		{
			name:   "boolean true only for literal true",
			fields: []formdata.Field{{Key: "b", Value: "yes"}},
			obj:    schema.Object(schema.Prop("b", schema.Boolean())),
			want:   map[string]any{"b": false},
		},
		{
			name: "repeated keys accumulate into array",
			fields: []formdata.Field{
				{Key: "ids", Value: "1"},
				{Key: "ids", Value: "2"},
			},
			obj:  schema.Object(schema.Prop("ids", schema.Array(schema.Number()))),
			want: map[string]any{"ids": []any{float64(1), float64(2)}},
		},
		{
			name:   "unknown keys ignored",
			fields: []formdata.Field{{Key: "x", Value: "1"}, {Key: "name", Value: "Ada"}},
			obj:    schema.Object(schema.Prop("name", schema.String())),
			want:   map[string]any{"name": "Ada"},
		},
		{
			name:   "wrapped property schemas unwrap before coercion",
			fields: []formdata.Field{{Key: "n", Value: "7"}},
			obj:    schema.Object(schema.Prop("n", schema.Number().Nullable().Optional())),
			want:   map[string]any{"n": float64(7)},
		},
		{
			name:   "string passthrough keeps raw text",
			fields: []formdata.Field{{Key: "name", Value: "Ada"}},
			obj:    schema.Object(schema.Prop("name", schema.String())),
			want:   map[string]any{"name": "Ada"},
		},
		{
			// Opportunistic JSON parsing changes the type of string values
			// that happen to be JSON literals. Observable source behavior.
			name:   "string that looks like JSON parses",
			fields: []formdata.Field{{Key: "name", Value: "123"}},
			obj:    schema.Object(schema.Prop("name", schema.String())),
			want:   map[string]any{"name": float64(123)},
		},
		{
			name:   "nested JSON in string field",
			fields: []formdata.Field{{Key: "blob", Value: `{"a":[1,2]}`}},
			obj:    schema.Object(schema.Prop("blob", schema.String())),
			want:   map[string]any{"blob": map[string]any{"a": []any{float64(1), float64(2)}}},
		},
		{
			name:   "unparsable number stays text",
			fields: []formdata.Field{{Key: "n", Value: "abc"}},
			obj:    schema.Object(schema.Prop("n", schema.Number())),
			want:   map[string]any{"n": "abc"},
		},
		{
			name:   "non-object target coerces nothing",
			fields: []formdata.Field{{Key: "n", Value: "1"}},
			obj:    schema.String(),
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formdata.Coerce(tt.fields, tt.obj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceNestedArrayFails(t *testing.T) {
	obj := schema.Object(schema.Prop("m", schema.Array(schema.Array(schema.Number()))))
	_, err := formdata.Coerce([]formdata.Field{{Key: "m", Value: "1"}}, obj)
	assert.ErrorIs(t, err, formdata.ErrNestedArray)
}

func TestFromValues(t *testing.T) {
	fields := formdata.FromValues(map[string][]string{
		"b": {"2", "3"},
		"a": {"1"},
	})
	assert.Equal(t, []formdata.Field{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "b", Value: "3"},
	}, fields)
}
