package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nba-stats-explorer/src/analysis"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService is the admin surface of the explorer: it lists, loads and
// evicts cached seasons and runs one-shot aggregations.
type ControlService struct {
	Config   *models.MConfig
	Cache    interfaces.ISeasonCache
	Analysis *analysis.AnalysisFacade
	Notifier interfaces.IDataExchanger
	Logger   *logger.Logger
}

// NewControlService creates a new instance of ControlService. notifier may be
// nil when no dashboard runs in the process.
func NewControlService(
	cfg *models.MConfig,
	cache interfaces.ISeasonCache,
	facade *analysis.AnalysisFacade,
	notifier interfaces.IDataExchanger,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Config:   cfg,
		Cache:    cache,
		Analysis: facade,
		Notifier: notifier,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSeasons(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	cached, err := s.Cache.Cached(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	stats := s.Cache.Stats(ctx)

	return structpb.NewStruct(map[string]interface{}{
		"seasons":        ints(s.Cache.Seasons()),
		"cached":         ints(cached),
		"default_season": s.Config.Source.DefaultSeason,
		"hits":           stats.Hits,
		"misses":         stats.Misses,
		"fetches":        stats.Fetches,
		"errors":         stats.Errors,
	})
}

// -----------------------------------------------------------------------------

// LoadSeason warms the cache with one season.
func (s *ControlService) LoadSeason(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	season, err := seasonOf(req)
	if err != nil {
		return nil, err
	}

	table, err := s.Cache.Get(ctx, season)
	if err != nil {
		s.Logger.Error("gRPC: LoadSeason %d failed: %v", season, err)
		return nil, toStatus(err)
	}

	s.Logger.Info("gRPC: Season %d loaded (%d rows)", season, len(table.Rows))
	return structpb.NewStruct(map[string]interface{}{
		"season":          table.Season,
		"rows":            len(table.Rows),
		"columns":         strs(table.Columns),
		"imputed_columns": strs(table.ImputedColumns),
	})
}

// -----------------------------------------------------------------------------

// EvictSeason drops a season from the cache and tells open sessions showing
// it to reload.
func (s *ControlService) EvictSeason(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	season, err := seasonOf(req)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Evict(ctx, season); err != nil {
		s.Logger.Error("gRPC: EvictSeason %d failed: %v", season, err)
		return nil, toStatus(err)
	}
	if s.Notifier != nil {
		s.Notifier.InvalidateSeason(season)
	}

	s.Logger.Info("gRPC: Season %d evicted", season)
	return structpb.NewStruct(map[string]interface{}{
		"season":  season,
		"evicted": true,
	})
}

// -----------------------------------------------------------------------------

// Aggregate returns the five views for a selection. Absent teams or
// positions select every code; an empty list selects none.
func (s *ControlService) Aggregate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	season, err := seasonOf(req)
	if err != nil {
		return nil, err
	}
	sel := models.MFilterSelection{
		Season:    season,
		Teams:     listOf(req, "teams"),
		Positions: listOf(req, "positions"),
	}

	table, err := s.Cache.Get(ctx, season)
	if err != nil {
		return nil, toStatus(err)
	}
	result := s.Analysis.Analyze(table, sel)

	views, err := toValue(result.Views)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode views: %v", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"season":        season,
		"teams":         strs(result.Selection.Teams),
		"positions":     strs(result.Selection.Positions),
		"filtered_rows": len(result.Filtered),
		"views":         views,
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// toStatus maps explorer errors to gRPC codes.
func toStatus(err error) error {
	var validation *helpers.ValidationError
	var fetch *helpers.FetchError
	var schema *helpers.SchemaError
	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &fetch):
		return status.Error(codes.Unavailable, err.Error())
	case errors.As(err, &schema):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func seasonOf(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["season"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "season is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "season must be an integer, got %v", v.AsInterface())
	}
	return int(n.NumberValue), nil
}

// listOf returns nil when key is absent and a non-nil slice otherwise.
func listOf(req *structpb.Struct, key string) []string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, item := range v.GetListValue().GetValues() {
		if s := item.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ints(xs []int) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func strs(xs []string) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// toValue round-trips v through JSON so structpb accepts it.
func toValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
