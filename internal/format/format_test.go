package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "¥0.00"},
		{5, "¥0.05"},
		{123456, "¥1,234.56"},
		{100000000, "¥1,000,000.00"},
		{-123456, "-¥1,234.56"},
		{-7, "-¥0.07"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(core.Money{Cents: tt.cents}))
	}
}

func TestCurrencyLocales(t *testing.T) {
	m := core.Money{Cents: 123456}
	assert.Equal(t, "CN¥1,234.56", New("en-US").Currency(m))
	assert.Equal(t, "1.234,56 CN¥", New("it-IT").Currency(m))
	assert.Equal(t, "-1.234,56 CN¥", New("it").Currency(core.Money{Cents: -123456}))
}

func TestNewLocaleMatching(t *testing.T) {
	assert.Equal(t, "zh-CN", New("").Locale())
	assert.Equal(t, "zh-CN", New("not a tag!").Locale())
	assert.Equal(t, "en-US", New("en-US").Locale())
	assert.Equal(t, "it-IT", New("it-IT").Locale())
}

func TestDateTime(t *testing.T) {
	when := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "1月15日 14:30", New("zh-CN").In(time.UTC).DateTime(when))
	assert.Equal(t, "January 15 at 02:30 PM", New("en-US").In(time.UTC).DateTime(when))
	assert.Equal(t, "15 gennaio alle ore 14:30", New("it-IT").In(time.UTC).DateTime(when))

	shanghai := time.FixedZone("CST", 8*3600)
	assert.Equal(t, "1月15日 22:30", New("zh-CN").In(shanghai).DateTime(when))

	local := time.Date(2024, 12, 3, 9, 5, 0, 0, time.Local)
	assert.Equal(t, "12月3日 09:05", DateTime(local))
}

func TestAxisTick(t *testing.T) {
	assert.Equal(t, "¥0.00", AxisTick(core.Money{}))
	assert.Equal(t, "¥1.50k", AxisTick(core.Money{Cents: 150000}))
	assert.Equal(t, "¥0.10k", AxisTick(core.Money{Cents: 10000}))
	assert.Equal(t, "¥12.35k", AxisTick(core.Money{Cents: 1234567}))
	assert.Equal(t, "-¥2.00k", AxisTick(core.Money{Cents: -200000}))
	assert.Equal(t, "1,50k CN¥", New("it-IT").AxisTick(core.Money{Cents: 150000}))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+¥12.00", Signed(core.Income, core.Money{Cents: 1200}))
	assert.Equal(t, "-¥12.00", Signed(core.Expense, core.Money{Cents: 1200}))
	assert.Equal(t, "-¥1,000.50", Signed(core.Expense, core.Money{Cents: 100050}))
}
