package address

import (
	"shoppingts/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(list []model.AddressEntry) int {
	n := 0
	for _, e := range list {
		if e.IsDefault {
			n++
		}
	}
	return n
}

func TestNormalize_FirstBecomesDefault(t *testing.T) {
	in := []model.AddressEntry{
		{ID: "a", Road: "서울 중구 세종대로 110"},
		{ID: "b", Road: "부산 해운대구 우동 1"},
	}
	out := Normalize(in)

	require.Len(t, out, 2)
	assert.True(t, out[0].IsDefault)
	assert.False(t, out[1].IsDefault)
	// Исходный список не меняется
	assert.False(t, in[0].IsDefault)
}

func TestNormalize_KeepsOnlyFirstDefault(t *testing.T) {
	out := Normalize([]model.AddressEntry{
		{ID: "a", Road: "road a"},
		{ID: "b", Road: "road b", IsDefault: true},
		{ID: "c", Road: "road c", IsDefault: true},
	})

	assert.Equal(t, 1, defaults(out))
	assert.True(t, out[1].IsDefault)
}

func TestNormalize_DropsBlankRoad(t *testing.T) {
	out := Normalize([]model.AddressEntry{
		{ID: "a", Road: "   ", IsDefault: true},
		{ID: "b", Road: "road b"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
	assert.True(t, out[0].IsDefault)

	assert.Empty(t, Normalize([]model.AddressEntry{{Road: ""}}))
	assert.NotNil(t, Normalize(nil))
}

func TestNormalize_AssignsMissingAndDuplicateIDs(t *testing.T) {
	in := []model.AddressEntry{
		{ID: "", Road: "road a"},
		{ID: "dup", Road: "road b"},
		{ID: "dup", Road: "road c"},
	}
	out := Normalize(in)

	require.Len(t, out, 3)
	assert.NotEmpty(t, out[0].ID)
	assert.Equal(t, "dup", out[1].ID)
	assert.NotEqual(t, "dup", out[2].ID)
	assert.NotEqual(t, out[0].ID, out[2].ID)

	// Одинаковый вход дает одинаковые id: адреса без id не "прыгают" между чтениями
	again := Normalize(in)
	assert.Equal(t, out[0].ID, again[0].ID)
	assert.Equal(t, out[2].ID, again[2].ID)
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize([]model.AddressEntry{
		{Road: "road a", IsDefault: true},
		{Road: "road b", IsDefault: true},
	})
	assert.Equal(t, once, Normalize(once))
}

func TestFromLegacy(t *testing.T) {
	acc := model.Account{Username: "abcd1234", RoadAddress: " 서울 중구 세종대로 110 ", AddressDetail: "101호"}
	list := FromLegacy(acc)

	require.Len(t, list, 1)
	assert.Equal(t, "서울 중구 세종대로 110", list[0].Road)
	assert.Equal(t, "101호", list[0].Detail)
	assert.Equal(t, model.TagHome, list[0].Tag)
	assert.Equal(t, LegacyLabel, list[0].Label)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, list[0].ID, FromLegacy(acc)[0].ID)

	// Нет roadAddress - берется полный адрес
	list = FromLegacy(model.Account{Username: "u1", Address: "대전 서구 둔산로 100"})
	require.Len(t, list, 1)
	assert.Equal(t, "대전 서구 둔산로 100", list[0].Road)

	assert.Nil(t, FromLegacy(model.Account{Username: "u1", Address: "  "}))
}

func TestResolve_PrefersAddressesOverLegacy(t *testing.T) {
	acc := model.Account{
		Username:    "abcd1234",
		RoadAddress: "legacy road",
		Addresses:   []model.AddressEntry{{ID: "x", Road: "new road"}},
	}
	list := Resolve(acc)

	require.Len(t, list, 1)
	assert.Equal(t, "new road", list[0].Road)
	assert.True(t, list[0].IsDefault)
}

func TestLegacyPatch(t *testing.T) {
	list := []model.AddressEntry{
		{ID: "a", Road: "road a"},
		{ID: "b", Road: "road b", Detail: "2F", IsDefault: true},
	}
	patch := LegacyPatch(list)

	assert.True(t, patch.SetAddresses)
	assert.Equal(t, "road b", *patch.RoadAddress)
	assert.Equal(t, "2F", *patch.AddressDetail)
	assert.Equal(t, "road b 2F", *patch.Address)

	empty := LegacyPatch(nil)
	assert.Equal(t, "", *empty.Address)
}
