// Package competitors discovers and ranks peer companies for a target firm.
// Discovery asks an LLM for sector-grouped peers and degrades to a static
// list; the ranker resolves, dedupes, and orders candidates by market cap.
package competitors

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/quantfold/marketlens/internal/llm"
	"github.com/quantfold/marketlens/pkg/models"
)

// fallbackSectors is returned whenever the LLM is unavailable or its output
// cannot be parsed into at least one sector.
var fallbackSectors = []models.SectorCompetitors{
	{
		Sector:    "Technology",
		Companies: []string{"Microsoft", "Apple", "IBM", "Oracle"},
	},
	{
		Sector:    "Financial",
		Companies: []string{"JPMorgan Chase", "Bank of America", "Wells Fargo", "Citigroup"},
	},
}

// Discovery suggests competitor companies grouped by sector.
type Discovery struct {
	provider llm.Provider
}

// NewDiscovery creates a Discovery. A nil provider is allowed; Suggest then
// always answers with the static fallback list.
func NewDiscovery(provider llm.Provider) *Discovery {
	return &Discovery{provider: provider}
}

// Suggest returns sector-grouped competitor names for the company. It never
// returns an error: LLM failures and unparseable responses fall back to a
// fixed two-sector list.
func (d *Discovery) Suggest(ctx context.Context, company string) []models.SectorCompetitors {
	if d.provider == nil {
		return fallbackSectors
	}

	resp, err := d.provider.Generate(ctx, competitorPrompt(company))
	if err != nil {
		log.Printf("competitors: llm suggestion for %q failed: %v", company, err)
		return fallbackSectors
	}

	sectors := ParseSectors(resp)
	if len(sectors) == 0 {
		log.Printf("competitors: could not parse llm response for %q, using fallback", company)
		return fallbackSectors
	}
	return sectors
}

func competitorPrompt(company string) string {
	return fmt.Sprintf(`List the main competitors of %s, grouped by sector.
Format each group as the sector name on its own line followed by one company name per line.
Separate groups with a blank line. Company names only, no tickers, no commentary.`, company)
}

// ParseSectors parses a blank-line separated response into sector groups.
// Each block needs a sector header plus at least one company name; blocks
// that do not are skipped.
func ParseSectors(text string) []models.SectorCompetitors {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var sectors []models.SectorCompetitors
	for _, block := range blocks {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• \t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) < 2 {
			continue
		}
		sectors = append(sectors, models.SectorCompetitors{
			Sector:    strings.TrimSuffix(lines[0], ":"),
			Companies: lines[1:],
		})
	}
	return sectors
}
