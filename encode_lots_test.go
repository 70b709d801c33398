package costbasis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/costbasis/date"
)

func TestDecodeLots(t *testing.T) {
	input := `{"symbol":"VUSA","date":"2024-03-01","shares":10,"price":"85.12","fx":0.79}

{"symbol":"VWRL","date":"2024-1-5","shares":"2.5","price":100,"fx":"0.8"}
{"symbol":"VUSA","date":"2023-12-01","shares":1,"price":80,"fx":0.78}
`
	book, err := DecodeLots(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLots() error = %v", err)
	}
	if book.Len() != 3 {
		t.Errorf("Len() = %d, want 3", book.Len())
	}
	ctx := context.Background()
	symbols, _ := book.Symbols(ctx)
	if strings.Join(symbols, ",") != "VUSA,VWRL" {
		t.Errorf("Symbols() = %v, want [VUSA VWRL]", symbols)
	}
	lots, err := book.Lots(ctx, "VUSA")
	if err != nil {
		t.Fatalf("Lots() error = %v", err)
	}
	// insertion order is kept.
	if lots[0].Date != date.New(2024, time.March, 1) || lots[1].Date != date.New(2023, time.December, 1) {
		t.Errorf("Lots() = %v, want file order", lots)
	}
	if !lots[0].PriceUSD.Equal(usd(85.12)) {
		t.Errorf("PriceUSD = %v, want %v", lots[0].PriceUSD, usd(85.12))
	}
	if _, err := book.Lots(ctx, "NOPE"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Lots(NOPE) error = %v, want %v", err, ErrUnknownSymbol)
	}
}

func TestDecodeLots_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", "{\"symbol\":\"A\",\"date\":\"2024-01-01\",\"shares\":1,\"price\":1,\"fx\":1}\nnope\n", "line 2"},
		{"zero shares", `{"symbol":"A","date":"2024-01-01","shares":0,"price":1,"fx":1}`, "line 1"},
		{"missing symbol", `{"date":"2024-01-01","shares":1,"price":1,"fx":1}`, "missing symbol"},
		{"bad date", `{"symbol":"A","date":"01/01/2024","shares":1,"price":1,"fx":1}`, "line 1"},
		{"relative date", `{"symbol":"A","date":"-1y","shares":1,"price":1,"fx":1}`, "line 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLots(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("DecodeLots() expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("DecodeLots() error = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestEncodeLots_Canonical(t *testing.T) {
	input := `{"symbol":"VWRL","date":"2024-01-05","shares":"2.5","price":"100","fx":"0.8"}
{"symbol":"VUSA","date":"2024-03-01","shares":"10","price":"85.12","fx":"0.79"}
{"symbol":"VUSA","date":"2023-12-01","shares":"1","price":"80","fx":"0.78"}
`
	want := `{"symbol":"VUSA","date":"2023-12-01","shares":"1","price":"80","fx":"0.78"}
{"symbol":"VUSA","date":"2024-03-01","shares":"10","price":"85.12","fx":"0.79"}
{"symbol":"VWRL","date":"2024-01-05","shares":"2.5","price":"100","fx":"0.8"}
`
	book, err := DecodeLots(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLots() error = %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeLots(&buf, book); err != nil {
		t.Fatalf("EncodeLots() error = %v", err)
	}
	if buf.String() != want {
		t.Errorf("EncodeLots() =\n%s\nwant\n%s", buf.String(), want)
	}
}

// brokenSource fails to list its symbols.
type brokenSource struct{ err error }

func (b brokenSource) Symbols(context.Context) ([]string, error)   { return nil, b.err }
func (b brokenSource) Lots(context.Context, string) ([]Lot, error) { return nil, b.err }

func TestEncodeLots_SourceError(t *testing.T) {
	failure := errors.New("disk on fire")
	var buf bytes.Buffer
	err := EncodeLots(&buf, brokenSource{failure})
	if !errors.Is(err, failure) {
		t.Errorf("EncodeLots() error = %v, want %v", err, failure)
	}
	if buf.Len() != 0 {
		t.Errorf("EncodeLots() wrote %q, want nothing", buf.String())
	}
}

func TestDecodeMarket(t *testing.T) {
	input := `{"symbol":"VUSA","price":"90","fx":"0.8"}
{"symbol":"VUSA","price":"95","fx":"0.81"}
`
	book, err := DecodeMarket(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeMarket() error = %v", err)
	}
	m, err := book.Market(context.Background(), "VUSA")
	if err != nil {
		t.Fatalf("Market() error = %v", err)
	}
	if !m.PriceUSD.Equal(usd(95)) || !m.FXRate.Equal(FX(0.81)) {
		t.Errorf("Market() = %v %v, want the last line", m.PriceUSD, m.FXRate)
	}

	if _, err := DecodeMarket(strings.NewReader(`{"symbol":"VUSA","price":"90","fx":"0"}`)); err == nil {
		t.Errorf("DecodeMarket() with a zero rate expected an error")
	}
}
