package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mediumgate/models"
	"mediumgate/pkg/caching"
	"mediumgate/pkg/fetcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mediumHead scores 3+2+3 = 8, exactly the default threshold.
const mediumHead = `
	<meta property="al:ios:app_store_id" content="828256236">
	<meta property="al:ios:app_name" content="Medium">
	<meta property="al:android:package" content="com.medium.reader">`

// nearMissHead scores 3+2+2 = 7, one short of the default threshold.
const nearMissHead = `
	<meta property="al:ios:app_store_id" content="828256236">
	<meta property="al:ios:app_name" content="Medium">
	<script type="application/ld+json">{"url":"https://medium.com/@writer"}</script>`

// stubFetcher serves canned results and counts probes per URL.
type stubFetcher struct {
	mu     sync.Mutex
	result fetcher.Result
	calls  map[string]int
}

func newStubFetcher(result fetcher.Result) *stubFetcher {
	return &stubFetcher{result: result, calls: make(map[string]int)}
}

func (s *stubFetcher) FetchHead(ctx context.Context, rawURL string) fetcher.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[rawURL]++
	return s.result
}

func (s *stubFetcher) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// newTestEngine wires an engine with a deterministic clock shared by
// the engine and its cache, so TTL behavior is testable without sleeps.
func newTestEngine(t *testing.T, probe HeadFetcher, now *time.Time) *Engine {
	t.Helper()
	clock := func() time.Time { return *now }
	cache := caching.NewMemoryStore(caching.DefaultTTL, 64, caching.WithClock(clock))
	e := New(nil, probe, cache, testLogger())
	e.now = clock
	return e
}

func TestDetect_CachesPerHostname(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	first := e.Detect(ctx, models.DetectRequest{URL: "https://custompub.example/post/1"})
	if !first.IsMediumLikely || first.Score != 8 {
		t.Fatalf("first detect = %+v, want medium at score 8", first)
	}
	if first.Source != models.SourceProbe {
		t.Errorf("first source = %q, want probe", first.Source)
	}

	second := e.Detect(ctx, models.DetectRequest{URL: "https://custompub.example/post/2"})
	if !second.IsMediumLikely {
		t.Error("cached answer flipped to not medium")
	}
	if second.Source != models.SourceCache {
		t.Errorf("second source = %q, want cache", second.Source)
	}
	if got := stub.totalCalls(); got != 1 {
		t.Errorf("probe ran %d times for one hostname, want 1", got)
	}

	// A different hostname is its own cache line.
	e.Detect(ctx, models.DetectRequest{URL: "https://otherpub.example/post/1"})
	if got := stub.totalCalls(); got != 2 {
		t.Errorf("probe ran %d times for two hostnames, want 2", got)
	}
}

func TestDetect_TTLExpiryReprobes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	e.Detect(ctx, models.DetectRequest{URL: "https://custompub.example/a"})
	now = now.Add(9 * time.Minute)
	e.Detect(ctx, models.DetectRequest{URL: "https://custompub.example/b"})
	if got := stub.totalCalls(); got != 1 {
		t.Fatalf("probe ran %d times inside the TTL window, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	e.Detect(ctx, models.DetectRequest{URL: "https://custompub.example/c"})
	if got := stub.totalCalls(); got != 2 {
		t.Errorf("probe ran %d times after TTL expiry, want 2", got)
	}
}

func TestDetect_FailedProbeCachedAsMiss(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{StatusCode: 503, Err: errors.New("probe returned status 503")})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	first := e.Detect(ctx, models.DetectRequest{URL: "https://down.example/x"})
	if first.IsMediumLikely || first.Score != 0 || len(first.Reasons) != 0 {
		t.Fatalf("failed probe = %+v, want all-zero outcome", first)
	}
	if first.Source != models.SourceProbe {
		t.Errorf("source = %q, want probe", first.Source)
	}

	// The negative outcome is cached: a down origin costs one probe
	// per TTL window, not one per request.
	second := e.Detect(ctx, models.DetectRequest{URL: "https://down.example/y"})
	if second.Source != models.SourceCache {
		t.Errorf("second source = %q, want cache", second.Source)
	}
	if got := stub.totalCalls(); got != 1 {
		t.Errorf("probe ran %d times for a down host, want 1", got)
	}
}

func TestDetect_EmptyHeadScoresZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: ""})
	e := newTestEngine(t, stub, &now)

	res := e.Detect(context.Background(), models.DetectRequest{URL: "https://headless.example/"})
	if res.IsMediumLikely || res.Score != 0 {
		t.Errorf("headless page = %+v, want all-zero outcome", res)
	}
}

func TestDetect_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name string
		head string
		want bool
	}{
		{name: "score equal to threshold is medium", head: mediumHead, want: true},
		{name: "score one below threshold is not", head: nearMissHead, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: tt.head})
			e := newTestEngine(t, stub, &now)

			res := e.Detect(context.Background(), models.DetectRequest{URL: "https://pub.example/p"})
			if res.IsMediumLikely != tt.want {
				t.Errorf("IsMediumLikely = %v at score %d, want %v", res.IsMediumLikely, res.Score, tt.want)
			}
		})
	}
}

func TestDetect_PerRequestThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: nearMissHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	strict := e.Detect(ctx, models.DetectRequest{URL: "https://pub.example/p"})
	if strict.IsMediumLikely {
		t.Errorf("score %d cleared default threshold", strict.Score)
	}

	// Lower threshold, different host so the probe runs again.
	lax := e.Detect(ctx, models.DetectRequest{URL: "https://pub2.example/p", Threshold: 5})
	if !lax.IsMediumLikely {
		t.Errorf("score %d did not clear threshold 5", lax.Score)
	}
}

func TestDetect_CacheHitAnswersVerbatim(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	e.Detect(ctx, models.DetectRequest{URL: "https://pub.example/p"})

	// A stricter per-call threshold does not flip a cached verdict.
	cached := e.Detect(ctx, models.DetectRequest{URL: "https://pub.example/q", Threshold: 20})
	if !cached.IsMediumLikely {
		t.Error("cached verdict was recomputed against the new threshold")
	}
	if cached.Source != models.SourceCache {
		t.Errorf("source = %q, want cache", cached.Source)
	}
	if cached.Score != 8 {
		t.Errorf("cached score = %d, want 8", cached.Score)
	}
}

func TestDetect_InvalidURL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)

	tests := []string{
		"",
		"not a url",
		"medium.com/@writer", // no scheme, no host
		"http://",
	}

	for _, raw := range tests {
		res := e.Detect(context.Background(), models.DetectRequest{URL: raw})
		if res.IsMediumLikely {
			t.Errorf("Detect(%q) claimed medium", raw)
		}
		if res.Source != models.SourceInvalid {
			t.Errorf("Detect(%q) source = %q, want invalid-url", raw, res.Source)
		}
	}
	if got := stub.totalCalls(); got != 0 {
		t.Errorf("probe ran %d times for invalid input, want 0", got)
	}
}

func TestIsMediumURL_AllowlistSkipsNetwork(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{Err: errors.New("network must not be touched")})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://medium.com/@writer/a-post-1abc", want: true},
		{url: "https://towardsdatascience.com/some-post", want: true},
		{url: "https://blog.medium.com/announcement", want: true},
		{url: "https://mediumrare.example.org/menu", want: true}, // substring quirk
		{url: "HTTPS://MEDIUM.COM/@WRITER", want: true},
		{url: "not a url", want: false},
	}

	for _, tt := range tests {
		if got := e.IsMediumURL(ctx, tt.url); got != tt.want {
			t.Errorf("IsMediumURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
	if got := stub.totalCalls(); got != 0 {
		t.Errorf("allowlist and invalid answers probed the network %d times", got)
	}
}

func TestIsMediumURL_FallsBackToProbe(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)

	if !e.IsMediumURL(context.Background(), "https://custompub.example/post") {
		t.Error("IsMediumURL missed a probe-detectable publication")
	}
	if got := stub.totalCalls(); got != 1 {
		t.Errorf("probe ran %d times, want 1", got)
	}
}

func TestClassify_LabelsSource(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	tests := []struct {
		name       string
		url        string
		wantSource string
		wantMedium bool
	}{
		{name: "allowlisted host", url: "https://medium.com/@writer/post", wantSource: models.SourceAllowlist, wantMedium: true},
		{name: "probed host", url: "https://custompub.example/post", wantSource: models.SourceProbe, wantMedium: true},
		{name: "garbage", url: "://nope", wantSource: models.SourceInvalid, wantMedium: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Classify(ctx, models.DetectRequest{URL: tt.url})
			if got.Source != tt.wantSource {
				t.Errorf("Classify(%q).Source = %q, want %q", tt.url, got.Source, tt.wantSource)
			}
			if got.IsMediumLikely != tt.wantMedium {
				t.Errorf("Classify(%q).IsMediumLikely = %v, want %v", tt.url, got.IsMediumLikely, tt.wantMedium)
			}
			if tt.wantSource == models.SourceAllowlist && len(got.Reasons) == 0 {
				t.Error("allowlist answer carried no reason")
			}
		})
	}
}

func TestConvertToFreediumURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "https url",
			in:   "https://medium.com/@user/post-1abc",
			want: "https://freedium-mirror.cfd/medium.com/@user/post-1abc",
		},
		{
			name: "http url",
			in:   "http://medium.com/@user/post",
			want: "https://freedium-mirror.cfd/medium.com/@user/post",
		},
		{
			name: "uppercase scheme",
			in:   "HTTPS://medium.com/p/abc",
			want: "https://freedium-mirror.cfd/medium.com/p/abc",
		},
		{
			name: "query and fragment survive",
			in:   "https://pub.example/post?source=rss#section",
			want: "https://freedium-mirror.cfd/pub.example/post?source=rss#section",
		},
		{
			name: "schemeless input passes through",
			in:   "medium.com/@user/post",
			want: "https://freedium-mirror.cfd/medium.com/@user/post",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertToFreediumURL(tt.in); got != tt.want {
				t.Errorf("ConvertToFreediumURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertToMirrorURL_CustomBase(t *testing.T) {
	got := ConvertToMirrorURL("https://mirror.internal/", "https://medium.com/p/abc")
	want := "https://mirror.internal/medium.com/p/abc"
	if got != want {
		t.Errorf("ConvertToMirrorURL() = %q, want %q", got, want)
	}
}

func TestDetect_ConcurrentRequestsSettle(t *testing.T) {
	// Concurrent first requests may each run their own probe; once
	// they settle the cache holds one coherent entry.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := newStubFetcher(fetcher.Result{OK: true, StatusCode: 200, HeadHTML: mediumHead})
	e := newTestEngine(t, stub, &now)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Detect(ctx, models.DetectRequest{URL: fmt.Sprintf("https://pub.example/post/%d", i)})
		}(i)
	}
	wg.Wait()

	res := e.Detect(ctx, models.DetectRequest{URL: "https://pub.example/final"})
	if !res.IsMediumLikely {
		t.Error("settled cache entry lost the verdict")
	}
	if res.Source != models.SourceCache {
		t.Errorf("source after settling = %q, want cache", res.Source)
	}
}
