package service

import "subpage-service/internal/entity"

// fallbackRates is served when the provider cannot answer for a pair.
var fallbackRates = map[entity.CurrencyPair]float64{
	{From: entity.USD, To: entity.USD}: 1,
	{From: entity.USD, To: entity.VND}: 25000,
	{From: entity.VND, To: entity.USD}: 0.00004,
	{From: entity.VND, To: entity.VND}: 1,
}

func FallbackRate(pair entity.CurrencyPair) (float64, bool) {
	rate, ok := fallbackRates[pair]
	return rate, ok
}
