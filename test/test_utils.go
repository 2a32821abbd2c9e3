package test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTimer measures how long a block of a test took.
type TestTimer struct {
	start time.Time
	name  string
}

func NewTestTimer(name string) *TestTimer {
	return &TestTimer{start: time.Now(), name: name}
}

// Stop logs the elapsed time through t and returns it.
func (tt *TestTimer) Stop(t testing.TB) time.Duration {
	d := time.Since(tt.start)
	t.Logf("⏱️  %s took %v", tt.name, d)
	return d
}

// PerformanceAssertion fails the test when duration is over the limit.
func PerformanceAssertion(t testing.TB, name string, duration, max time.Duration) {
	t.Helper()
	if duration > max {
		t.Errorf("❌ %s took %v, expected less than %v", name, duration, max)
		return
	}
	t.Logf("✅ %s took %v (under %v)", name, duration, max)
}

// SuiteResult collects timings of the subtests of one suite.
type SuiteResult struct {
	mu      sync.Mutex
	name    string
	total   time.Duration
	passed  int
	failed  int
	slowest string
	slowDur time.Duration
}

func NewSuiteResult(name string) *SuiteResult {
	return &SuiteResult{name: name}
}

// Track times a subtest; call the returned func with defer.
// A failed subtest is counted from t.Failed().
func (s *SuiteResult) Track(t testing.TB, name string, max time.Duration) func() {
	timer := NewTestTimer(name)
	return func() {
		d := timer.Stop(t)

		s.mu.Lock()
		s.total += d
		if t.Failed() {
			s.failed++
		} else {
			s.passed++
		}
		if d > s.slowDur {
			s.slowest, s.slowDur = name, d
		}
		s.mu.Unlock()

		PerformanceAssertion(t, name, d, max)
	}
}

// Summary logs the suite totals.
func (s *SuiteResult) Summary(t testing.TB) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.Logf("📊 %s: passed=%d failed=%d total=%v slowest=%q (%v)",
		s.name, s.passed, s.failed, s.total, s.slowest, s.slowDur)
}

// Ctx is a short-lived context for service calls in tests.
func Ctx(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ConcurrentResult counts outcomes of RunConcurrently.
type ConcurrentResult struct {
	Succeeded int
	Errors    []error
}

// RunConcurrently starts n goroutines behind one gate so they race on fn.
func RunConcurrently(n int, fn func(i int) error) ConcurrentResult {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		gate = make(chan struct{})
		out  ConcurrentResult
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Errors = append(out.Errors, err)
				return
			}
			out.Succeeded++
		}(i)
	}
	close(gate)
	wg.Wait()
	return out
}

// FileHeader builds a multipart file header the way fiber hands uploads to handlers.
func FileHeader(t testing.TB, field, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(data))+1<<20))

	files := req.MultipartForm.File[field]
	require.Len(t, files, 1)
	return files[0]
}
