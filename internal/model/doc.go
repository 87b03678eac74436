// Package model defines shared data types used across the grid bot.
//
// Conventions:
//   - Prices and quantities: decimal.Decimal, decoded from the exchange's
//     string-encoded JSON numbers
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Client order ids: int64, strategy prefix followed by random digits
package model
