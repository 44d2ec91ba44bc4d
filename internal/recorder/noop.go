package recorder

import "NepseAnalyzer/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *SnapshotRecord) error { return nil }
func (n *NoopRecorder) RecordRefresh(_ *RefreshRecord) error   { return nil }
func (n *NoopRecorder) LastRecommendation(_ string) (model.Recommendation, bool, error) {
	return "", false, nil
}
func (n *NoopRecorder) Close() error { return nil }
