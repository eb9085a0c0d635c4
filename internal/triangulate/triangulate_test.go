package triangulate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/newsintel/internal/lookup"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResolver struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(query string, bucket model.Bucket) lookup.Outcome
}

func (r *recordingResolver) Resolve(_ context.Context, query string, bucket model.Bucket) lookup.Outcome {
	r.mu.Lock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[string(bucket)+"|"+query]++
	r.mu.Unlock()
	return r.fn(query, bucket)
}

func liveOutcome(results ...lookup.Result) lookup.Outcome {
	return lookup.Outcome{Results: results}
}

func claims() []model.Claim {
	return []model.Claim{
		{ID: "c1", Text: "The vaccine is 95% effective.", Subjects: []string{"vaccine", "effective"}},
		{ID: "c2", Text: "Nothing named here at all."},
	}
}

func TestTriangulate_EveryBucketCovered(t *testing.T) {
	r := &recordingResolver{fn: func(q string, b model.Bucket) lookup.Outcome {
		return liveOutcome(lookup.Result{Title: "Vaccine efficacy " + string(b), SourceID: "https://doi.org/10.1/" + string(b)})
	}}

	out, root := New(r, nil, 4, 4).Triangulate(context.Background(), claims(), "vaccine")

	require.Len(t, out, 2)
	for _, c := range out {
		for _, b := range model.Buckets {
			n := 0
			for _, ref := range c.References {
				if ref.Bucket == b {
					n++
				}
			}
			assert.GreaterOrEqual(t, n, 1, "claim %s bucket %s", c.ID, b)
		}
	}
	assert.Equal(t, model.TierPrimary, out[0].References[0].Authority)
	assert.Equal(t, "vaccine effective", out[0].References[0].Query)
	assert.Equal(t, "Nothing named here at all", out[1].References[0].Query)

	require.Len(t, root, 3)
	for _, ref := range root {
		assert.Equal(t, model.BucketAlternative, ref.Bucket)
		assert.Equal(t, model.RelevanceGuidance, ref.Relevance)
	}
}

func TestTriangulate_TotalFailureYieldsGuidance(t *testing.T) {
	policy := lookup.NewPolicy(lookup.Func(func(ctx context.Context, q string, b model.Bucket) ([]lookup.Result, error) {
		return nil, errors.New("network down")
	}), time.Second, 4)

	out, _ := New(policy, nil, 2, 4).Triangulate(context.Background(), claims(), "vaccine")

	for _, c := range out {
		require.Len(t, c.References, 3)
		for _, ref := range c.References {
			assert.True(t, ref.Fallback)
			assert.Equal(t, model.RelevanceGuidance, ref.Relevance)
			assert.Equal(t, "error", ref.Reason)
			assert.False(t, ref.Corroborates())
		}
	}
}

func TestTriangulate_CancelledContextStillCompletes(t *testing.T) {
	policy := lookup.NewPolicy(lookup.Func(func(ctx context.Context, q string, b model.Bucket) ([]lookup.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), time.Hour, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _ := New(policy, nil, 2, 4).Triangulate(ctx, claims(), "vaccine")
	for _, c := range out {
		assert.Len(t, c.References, 3)
	}
}

func TestTriangulate_SharesIdenticalQueries(t *testing.T) {
	r := &recordingResolver{fn: func(q string, b model.Bucket) lookup.Outcome {
		return liveOutcome(lookup.Result{Title: "x", SourceID: "https://example.com"})
	}}
	cs := []model.Claim{
		{ID: "c1", Subjects: []string{"vaccine"}},
		{ID: "c2", Subjects: []string{"vaccine"}},
	}

	New(r, nil, 4, 4).Triangulate(context.Background(), cs, "t")

	assert.Len(t, r.calls, 3)
	for _, n := range r.calls {
		assert.Equal(t, 1, n)
	}
}

func TestTriangulate_DedupeAndCap(t *testing.T) {
	r := &recordingResolver{fn: func(q string, b model.Bucket) lookup.Outcome {
		return liveOutcome(
			lookup.Result{Title: "Vaccine Trial", SourceID: "https://a.example"},
			lookup.Result{Title: "vaccine  trial!", SourceID: "https://b.example"},
			lookup.Result{Title: "Second", SourceID: "https://c.example"},
			lookup.Result{Title: "Third", SourceID: "https://d.example"},
			lookup.Result{Title: "", SourceID: "https://e.example"},
		)
	}}

	out, _ := New(r, nil, 4, 2).Triangulate(context.Background(), claims()[:1], "t")

	var mainstream []string
	for _, ref := range out[0].References {
		if ref.Bucket == model.BucketMainstream {
			mainstream = append(mainstream, ref.Title)
		}
	}
	assert.Equal(t, []string{"Vaccine Trial", "Second"}, mainstream)
}

func TestTriangulate_DoesNotMutateInput(t *testing.T) {
	r := &recordingResolver{fn: func(q string, b model.Bucket) lookup.Outcome { return lookup.Outcome{} }}
	in := claims()
	out, _ := New(r, nil, 1, 4).Triangulate(context.Background(), in, "t")

	assert.Empty(t, in[0].References)
	assert.Len(t, out[0].References, 3)
	assert.True(t, out[0].References[0].Fallback)
	assert.Equal(t, "no results", out[0].References[0].Reason)
}

func TestTriangulate_PrefersBackendRelevance(t *testing.T) {
	r := &recordingResolver{fn: func(q string, b model.Bucket) lookup.Outcome {
		return liveOutcome(
			lookup.Result{Title: "Weather report for Tuesday", SourceID: "https://a.example", Relevance: model.RelevanceHigh},
			lookup.Result{Title: "Weather report for Monday", SourceID: "https://b.example"},
			lookup.Result{Title: "Weather report for Sunday", SourceID: "https://c.example", Relevance: model.RelevanceGuidance},
		)
	}}

	out, _ := New(r, nil, 1, 4).Triangulate(context.Background(), claims()[:1], "t")

	got := make(map[string]model.Relevance)
	for _, ref := range out[0].References {
		if ref.Bucket == model.BucketMainstream {
			got[ref.Title] = ref.Relevance
		}
	}
	assert.Equal(t, model.RelevanceHigh, got["Weather report for Tuesday"], "backend ranking kept")
	assert.Equal(t, model.RelevanceLow, got["Weather report for Monday"], "scored against subjects")
	assert.Equal(t, model.RelevanceLow, got["Weather report for Sunday"], "live hit never labelled guidance")
}

func TestRelevance(t *testing.T) {
	terms := []string{"vaccine", "effective", "Pfizer"}

	assert.Equal(t, model.RelevanceHigh, Relevance(terms, "Pfizer vaccine found effective in trial"))
	assert.Equal(t, model.RelevanceMedium, Relevance(terms, "New vaccines announced"))
	assert.Equal(t, model.RelevanceLow, Relevance(terms, "Weather report for Tuesday"))
	assert.Equal(t, model.RelevanceLow, Relevance(nil, "anything"))
	assert.Equal(t, model.RelevanceMedium, Relevance([]string{"aliens"}, "Do alien civilizations exist"))
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "World Health Organization Geneva", Query(model.Claim{Subjects: []string{"World Health Organization", "Geneva"}}))
	assert.Equal(t, "Prices rose sharply", Query(model.Claim{Text: "Prices  rose sharply!"}))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "covid 19 vaccine trial", NormalizeTitle("  COVID-19: Vaccine   Trial! "))
	assert.Equal(t, "", NormalizeTitle("!!!"))
}
