// Package export writes portfolios back out: zip archives in the format
// ingestion accepts, and CSV summaries for spreadsheets.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/stratfolio/strategy"
)

// MetadataFile is the archive entry describing the portfolio.
const MetadataFile = "portfolio-info.json"

// Metadata is written to MetadataFile.
type Metadata struct {
	PortfolioName string    `json:"portfolioName"`
	CreatedAt     time.Time `json:"createdAt"`
	ExportedAt    time.Time `json:"exportedAt"`
	StrategyCount int       `json:"strategyCount"`
	Symbols       []string  `json:"symbols"`
	Timeframes    []string  `json:"timeframes"`
}

// NewMetadata describes p as exported at the given time.
func NewMetadata(p strategy.Portfolio, exportedAt time.Time) *Metadata {
	return &Metadata{
		PortfolioName: p.Name,
		CreatedAt:     p.CreatedAt,
		ExportedAt:    exportedAt,
		StrategyCount: len(p.Members),
		Symbols:       p.Symbols(),
		Timeframes:    p.Timeframes(),
	}
}

// ArchiveOptions controls entry naming.
type ArchiveOptions struct {
	// Flat writes "SYMBOL_PERIOD_<n>.json" at the top level instead of
	// grouping into SYMBOL/PERIOD/ directories.
	Flat bool
	// NewID names grouped entries; defaults to a random UUID.
	NewID func() string
}

// WriteArchive writes members as a zip to w. Grouped entries are ordered
// by symbol, then period, each in first-appearance order. meta, when not
// nil, is added as MetadataFile.
func WriteArchive(w io.Writer, members []strategy.Strategy, meta *Metadata, opts ArchiveOptions) error {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	zw := zip.NewWriter(w)

	if opts.Flat {
		for i, s := range members {
			name := pathSegment(s.DataID.Symbol) + "_" + pathSegment(s.DataID.Period) + "_" + strconv.Itoa(i+1) + ".json"
			if err := writeJSON(zw, name, s); err != nil {
				return err
			}
		}
	} else {
		for _, g := range group(members) {
			for _, s := range g.members {
				name := fmt.Sprintf("%s/%s/strategy-%s.json", pathSegment(g.symbol), pathSegment(g.period), newID())
				if err := writeJSON(zw, name, s); err != nil {
					return err
				}
			}
		}
	}

	if meta != nil {
		if err := writeJSON(zw, MetadataFile, meta); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

type bucket struct {
	symbol, period string
	members        []strategy.Strategy
}

// group buckets members by symbol then period keeping first-appearance
// order at both levels.
func group(members []strategy.Strategy) []bucket {
	var symbols []string
	periods := map[string][]string{}
	byKey := map[strategy.DataID][]strategy.Strategy{}

	for _, s := range members {
		d := s.DataID
		if _, ok := periods[d.Symbol]; !ok {
			symbols = append(symbols, d.Symbol)
			periods[d.Symbol] = nil
		}
		if _, ok := byKey[d]; !ok {
			periods[d.Symbol] = append(periods[d.Symbol], d.Period)
		}
		byKey[d] = append(byKey[d], s)
	}

	out := make([]bucket, 0, len(byKey))
	for _, sym := range symbols {
		for _, per := range periods[sym] {
			out = append(out, bucket{symbol: sym, period: per, members: byKey[strategy.DataID{Symbol: sym, Period: per}]})
		}
	}
	return out
}
