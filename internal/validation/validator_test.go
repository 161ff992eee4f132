package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type sample struct {
	UserID string `json:"userId" validate:"required,max=8"`
	Where  *point `json:"coordinates" validate:"required"`
}

func ptr(v float64) *float64 { return &v }

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(&sample{UserID: "u1", Where: &point{Lat: ptr(35), Lng: ptr(129)}}))
	})

	t.Run("missing fields", func(t *testing.T) {
		err := ValidateStruct(&sample{})
		require.Error(t, err)

		var verrs Errors
		require.True(t, errors.As(err, &verrs))
		assert.ElementsMatch(t, Errors{
			{Field: "userId", Tag: "required"},
			{Field: "coordinates", Tag: "required"},
		}, verrs)
	})

	t.Run("nested range", func(t *testing.T) {
		err := ValidateStruct(&sample{UserID: "u1", Where: &point{Lat: ptr(95), Lng: ptr(129)}})
		require.Error(t, err)

		var verrs Errors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, FieldError{Field: "coordinates.lat", Tag: "max", Param: "90"}, verrs[0])
		assert.Contains(t, err.Error(), "coordinates.lat failed max=90")
	})
}

func TestValidator_Singleton(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}
