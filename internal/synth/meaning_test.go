package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeMeaning(t *testing.T) {
	cases := map[string]string{
		"customer_email": "email",
		"email":          "email",
		"tel":            "phone",
		"mobile_no":      "phone",
		"addr":           "address",
		"home_address":   "address",
		"zip":            "zipcode",
		"postal_cd":      "zipcode",
		"city":           "city",
		"homepage_url":   "url",
		"user_id":        "id",
		"id":             "id",
		"order_total":    "",
		"description":    "",
	}
	for col, want := range cases {
		assert.Equal(t, want, AnalyzeMeaning(col), "column %s", col)
	}
}

func TestFabricatedMeanings(t *testing.T) {
	assert.True(t, Fabricated("email"))
	assert.True(t, Fabricated("phone"))
	assert.False(t, Fabricated("id"))
	assert.False(t, Fabricated(""))
}
