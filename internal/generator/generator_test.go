package generator

import (
	"bytes"
	stderrors "errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/token"
)

func TestEncode_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected string
	}{
		{"null", models.NullValue(), `null`},
		{"bool", models.BoolValue(true), `true`},
		{"integer", models.IntegerValue(-9), `-9`},
		{"decimal", models.DecimalValue(decimal.RequireFromString("79228162514264337593543950335.5")), `79228162514264337593543950335.5`},
		{"double", models.DoubleValue(0.1), `0.1`},
		{"string", models.StringValue("<a & b>"), `"<a & b>"`},
		{"utc instant", models.InstantValue(time.Date(2002, 2, 22, 13, 14, 15, 0, time.UTC), models.UTC), `"2002-02-22T13:14:15Z"`},
		{"unspecified instant", models.InstantValue(time.Date(2002, 2, 22, 13, 14, 15, 500000000, time.UTC), models.Unspecified), `"2002-02-22T13:14:15.5"`},
		{"offset instant", models.OffsetValue(time.Date(2002, 2, 22, 13, 14, 15, 0, time.FixedZone("", -8*3600))), `"2002-02-22T13:14:15-08:00"`},
	}
	g := NewGenerator(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.EncodeToString(tt.value, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEncode_ObjectKeepsOrder(t *testing.T) {
	v := models.ObjectValue(models.MapOf(
		models.Member{Key: "b", Value: models.IntegerValue(1)},
		models.Member{Key: "a", Value: models.ArrayValue(models.NullValue(), models.BoolValue(false))},
		models.Member{Key: "c", Value: models.ObjectValue(nil)},
	))

	got, err := NewGenerator(Options{}).EncodeToString(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[null,false],"c":{}}`, got)
}

func TestEncode_Indented(t *testing.T) {
	v := models.ObjectValue(models.MapOf(
		models.Member{Key: "a", Value: models.ArrayValue(models.IntegerValue(1))},
	))

	got, err := NewGenerator(Options{}).EncodeToString(v, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ]\n}", got)
}

func TestEncode_IgnoreNulls(t *testing.T) {
	v := models.ObjectValue(models.MapOf(
		models.Member{Key: "keep", Value: models.IntegerValue(1)},
		models.Member{Key: "drop", Value: models.NullValue()},
		models.Member{Key: "list", Value: models.ArrayValue(models.NullValue())},
	))

	got, err := NewGenerator(Options{IgnoreNulls: true}).EncodeToString(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"keep":1,"list":[null]}`, got)
}

func TestEncode_DictionaryKeys(t *testing.T) {
	v := models.ObjectValue(models.MapOf(
		models.Member{Key: "FirstName", Value: models.StringValue("Ada")},
		models.Member{Key: "Nested", Value: models.ObjectValue(models.MapOf(
			models.Member{Key: "LastName", Value: models.StringValue("Lovelace")},
		))},
	))

	unprocessed := NewGenerator(Options{Naming: naming.Strategy{Transform: naming.Camel}})
	got, err := unprocessed.EncodeToString(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"FirstName":"Ada","Nested":{"LastName":"Lovelace"}}`, got)

	processed := NewGenerator(Options{Naming: naming.Strategy{Transform: naming.Camel, ProcessDictionaryKeys: true}})
	got, err = processed.EncodeToString(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"firstName":"Ada","nested":{"lastName":"Lovelace"}}`, got)
}

func TestEncode_NonFiniteDoubleFails(t *testing.T) {
	g := NewGenerator(Options{})
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := g.EncodeToString(models.ArrayValue(models.DoubleValue(f)), "")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrUnsupported))
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeEncode}))
	}
}

func TestEncode_WriterFailureIsEncodeError(t *testing.T) {
	var buf bytes.Buffer
	enc := token.NewEncoder(&buf)
	require.NoError(t, enc.BeginObject())

	// An object member needs a name before its value.
	err := NewGenerator(Options{}).Encode(enc, models.IntegerValue(1))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeEncode}))
	assert.True(t, strings.HasPrefix(errors.UserFriendlyError(err), "Encode error:"))
}
