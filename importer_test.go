package costbasis

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/costbasis/date"
)

func TestImportJSON_DefaultMapping(t *testing.T) {
	doc := `{
  "account": "ISA",
  "purchases": [
    {"symbol":"VUSA","executedAt":"2024-01-10T09:30:00Z","quantity":10,"priceUsd":85.123456789,"fxRate":0.7861},
    {"symbol":"VWRL","executedAt":"2024-02-01","quantity":"2.5","priceUsd":"100","fxRate":"0.79"}
  ]
}`
	book, err := ImportJSON([]byte(doc), DefaultMapping)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	lots, err := book.Lots(context.Background(), "VUSA")
	if err != nil {
		t.Fatalf("Lots() error = %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("len(Lots()) = %d, want 1", len(lots))
	}
	l := lots[0]
	if l.Date != date.New(2024, time.January, 10) {
		t.Errorf("Date = %v, want 2024-01-10", l.Date)
	}
	// json numbers are read as decimals, no float rounding.
	if got := l.PriceUSD.Decimal().String(); got != "85.123456789" {
		t.Errorf("PriceUSD = %s, want 85.123456789", got)
	}
	if !l.FXRate.Equal(FX(0.7861)) {
		t.Errorf("FXRate = %v, want 0.7861", l.FXRate)
	}
	if book.Len() != 2 {
		t.Errorf("Len() = %d, want 2", book.Len())
	}
}

func TestImportJSON_CustomMapping(t *testing.T) {
	doc := `{"orders":[
  {"side":"BUY","when":"10/01/2024","fill":{"qty":3,"px":50},"fx":0.8},
  {"side":"SELL","when":"11/01/2024","fill":{"qty":1,"px":55},"fx":0.8},
  {"side":"BUY","when":"12/01/2024","fill":{"qty":1,"px":52},"fx":0.81}
]}`
	m := Mapping{
		Lots:          `$.orders[?(@.side=="BUY")]`,
		Date:          "$.when",
		Shares:        "$.fill.qty",
		Price:         "$.fill.px",
		FX:            "$.fx",
		DefaultSymbol: "VUSA",
		DateLayout:    "02/01/2006",
	}
	book, err := ImportJSON([]byte(doc), m)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	lots, err := book.Lots(context.Background(), "VUSA")
	if err != nil {
		t.Fatalf("Lots() error = %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("len(Lots()) = %d, want 2 buys", len(lots))
	}
	if lots[1].Date != date.New(2024, time.January, 12) {
		t.Errorf("Date = %v, want 2024-01-12", lots[1].Date)
	}
}

func TestImportJSON_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing field", `{"purchases":[{"symbol":"A","executedAt":"2024-01-10","quantity":1,"priceUsd":1}]}`},
		{"bad number", `{"purchases":[{"symbol":"A","executedAt":"2024-01-10","quantity":"lots","priceUsd":1,"fxRate":1}]}`},
		{"bad date", `{"purchases":[{"symbol":"A","executedAt":"yesterday","quantity":1,"priceUsd":1,"fxRate":1}]}`},
		{"invalid lot", `{"purchases":[{"symbol":"A","executedAt":"2024-01-10","quantity":0,"priceUsd":1,"fxRate":1}]}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ImportJSON([]byte(tc.doc), DefaultMapping); err == nil {
				t.Errorf("ImportJSON() expected an error")
			}
		})
	}
}
