package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// fakeTMDB serves a small fixed catalog and records the query of the last
// non-genre request.
type fakeTMDB struct {
	*httptest.Server

	mu   sync.Mutex
	last map[string]string
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	t.Helper()
	f := &fakeTMDB{}

	list := `{"page":1,"total_pages":1,"total_results":1,"results":[` +
		`{"id":603,"title":"The Matrix","release_date":"1999-03-31","vote_average":8.2,"genre_ids":[28,878]}]}`

	mux := http.NewServeMux()
	mux.HandleFunc("GET /genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`))
	})
	for _, path := range []string{"/movie/popular", "/movie/top_rated", "/search/movie", "/discover/movie"} {
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			_, _ = w.Write([]byte(list))
		})
	}
	mux.HandleFunc("GET /movie/603", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","release_date":"1999-03-31",` +
			`"status":"Released","runtime":136,"vote_average":8.2,"vote_count":25000,` +
			`"genres":[{"id":28,"name":"Action"}],` +
			`"credits":{"cast":[{"id":6384,"name":"Keanu Reeves","character":"Neo","order":0}],` +
			`"crew":[{"id":9340,"name":"Lana Wachowski","job":"Director","department":"Directing"}]}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeTMDB) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = map[string]string{"path": r.URL.Path}
	for k := range r.URL.Query() {
		f.last[k] = r.URL.Query().Get(k)
	}
}

func (f *fakeTMDB) lastRequest() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// writeTestConfig writes a config pointing at baseURL and returns its path.
func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("TMDB_BASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(`
[tmdb]
api_key = "test-key"
base_url = %q
requests_per_second = 0

[log]
level = "error"
`, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runCmd executes the root command with args and returns stdout and stderr.
// Flag values are reset afterwards since commands are package globals.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
