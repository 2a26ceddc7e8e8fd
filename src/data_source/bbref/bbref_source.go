package bbref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
	"nba-stats-explorer/src/utils"

	"github.com/PuerkitoBio/goquery"
)

// BBRefSource scrapes basketball-reference.com per-game pages.
type BBRefSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBBRefSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *BBRefSource {
	return &BBRefSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg, "BBRefSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *BBRefSource) Name() string {
	return s.Config.Source.Name
}

// -----------------------------------------------------------------------------

// Seasons returns the supported seasons, newest first.
func (s *BBRefSource) Seasons() []int {
	return utils.SeasonRange(s.Config.Source.MinSeason, s.Config.Source.MaxSeason)
}

// -----------------------------------------------------------------------------

// URL builds the per-game page address of season.
func (s *BBRefSource) URL(season int) string {
	return fmt.Sprintf(s.Config.Source.URLTemplate, season)
}

// -----------------------------------------------------------------------------

// Fetch downloads the season page and returns its first table.
func (s *BBRefSource) Fetch(ctx context.Context, season int) (*models.MRawTable, error) {
	src := s.Config.Source
	if !utils.InSeasonRange(season, src.MinSeason, src.MaxSeason) {
		return nil, helpers.NewValidationError("season %d outside supported range %d-%d", season, src.MinSeason, src.MaxSeason)
	}

	url := s.URL(season)
	s.Logger.Info("Fetching season %d from %s", season, url)

	body, err := s.Network.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	columns, rows, err := ParseFirstTable(bytes.NewReader(body), src.HeaderAliases)
	if err != nil {
		return nil, helpers.NewFetchError(err, "season %d", season)
	}

	s.Logger.Info("Season %d: parsed %d columns, %d rows", season, len(columns), len(rows))
	return &models.MRawTable{
		Season:  season,
		Source:  url,
		Columns: columns,
		Rows:    rows,
	}, nil
}

// -----------------------------------------------------------------------------

// ParseFirstTable reads the first <table> of an HTML document.
// The header is the last thead row (or the first row when the table has no
// thead). Every tbody row is returned as data, including header rows the
// page repeats inside the body. Rows are padded or cut to the header width.
func ParseFirstTable(r io.Reader, aliases map[string]string) ([]string, [][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil, fmt.Errorf("no table found in page")
	}

	var header *goquery.Selection
	var body *goquery.Selection

	if head := table.ChildrenFiltered("thead").Find("tr"); head.Length() > 0 {
		header = head.Last()
		body = table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	} else {
		all := table.Find("tr")
		if all.Length() == 0 {
			return nil, nil, fmt.Errorf("table has no rows")
		}
		header = all.First()
		body = all.Slice(1, goquery.ToEnd)
	}

	columns := headerColumns(rowCells(header), aliases)
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table has no header cells")
	}

	rows := make([][]string, 0, body.Length())
	body.Each(func(_ int, tr *goquery.Selection) {
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		row := make([]string, len(columns))
		copy(row, cells)
		rows = append(rows, row)
	})

	return columns, rows, nil
}

// -----------------------------------------------------------------------------

// rowCells returns the trimmed text of the th/td children of tr, repeating
// cells that span several columns.
func rowCells(tr *goquery.Selection) []string {
	var out []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		span := 1
		if raw, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(raw); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			out = append(out, text)
		}
	})
	return out
}

// -----------------------------------------------------------------------------

func headerColumns(cells []string, aliases map[string]string) []string {
	seen := make(map[string]int, len(cells))
	columns := make([]string, len(cells))
	for i, name := range cells {
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		columns[i] = name
	}
	return columns
}
