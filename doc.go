// Package costbasis computes the cost basis of securities bought in USD by a
// GBP based investor.
//
// A security is held as a list of purchase lots, each with its own date, share
// count, USD price and GBP/USD exchange rate. [Summarize] aggregates the lots
// into a [Summary]: total shares, total and average cost in both currencies,
// the weighted average exchange rate, and the split between short-term and
// long-term holdings as of a reporting date.
//
// A Summary is historical until market data is attached with
// [AttachMarketData], which adds market value and unrealized profit and loss
// without walking the lots again.
//
// All arithmetic is exact decimal arithmetic; amounts are only rounded for
// display.
//
// [Service] wires the computation to a [LotSource] and a [MarketSource], such
// as the JSONL backed [LotBook] and [MarketBook]. This package serves as the
// foundational logic for the `cbs` command-line tool.
package costbasis
