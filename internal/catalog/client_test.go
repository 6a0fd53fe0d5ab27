package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"dogfinder/internal/components/chrono"
	"dogfinder/internal/components/telemetry/telemetrytest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "fetch-access-token"

type fakeService struct {
	mu          sync.Mutex
	dogs        map[string]Dog
	breeds      []string
	searches    []map[string][]string
	detailCalls [][]string
	locations   []LocationQuery
}

func newFakeService() *fakeService {
	return &fakeService{dogs: map[string]Dog{}}
}

func (f *fakeService) authorized(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value != "token" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
		return false
	}
	return true
}

func writeJson(w http.ResponseWriter, value any) {
	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(value)
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "token", Path: "/", HttpOnly: true})
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /dogs/breeds", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		writeJson(w, f.breeds)
	})
	mux.HandleFunc("GET /dogs/search", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.mu.Lock()
		f.searches = append(f.searches, r.URL.Query())
		f.mu.Unlock()

		var ids []string
		for _, breed := range r.URL.Query()["breeds[]"] {
			for id, dog := range f.dogs {
				if dog.Breed == breed {
					ids = append(ids, id)
				}
			}
		}
		writeJson(w, SearchResult{ResultIDs: ids, Total: len(ids)})
	})
	mux.HandleFunc("POST /dogs", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var ids []string
		err := json.NewDecoder(r.Body).Decode(&ids)
		if err != nil || len(ids) > MaxBatchSize {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.detailCalls = append(f.detailCalls, ids)
		f.mu.Unlock()

		out := []Dog{}
		for _, id := range ids {
			if dog, ok := f.dogs[id]; ok {
				out = append(out, dog)
			}
		}
		writeJson(w, out)
	})
	mux.HandleFunc("POST /locations/search", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var query LocationQuery
		json.NewDecoder(r.Body).Decode(&query)
		f.mu.Lock()
		f.locations = append(f.locations, query)
		f.mu.Unlock()
		writeJson(w, LocationResult{
			Results: []Location{{ZipCode: "78701", City: "Austin", State: "TX"}},
			Total:   1,
		})
	})
	mux.HandleFunc("POST /dogs/match", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var ids []string
		json.NewDecoder(r.Body).Decode(&ids)
		writeJson(w, MatchResult{Match: ids[len(ids)-1]})
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return mux
}

func setup(t *testing.T, cacheSize int) (*Client, *fakeService, *telemetrytest.Recorder) {
	service := newFakeService()
	server := httptest.NewServer(service.handler())
	t.Cleanup(server.Close)

	rec := &telemetrytest.Recorder{}
	client, err := NewClient(ClientOptions{BaseUrl: server.URL, DetailCacheSize: cacheSize}, rec)
	require.NoError(t, err)
	return client, service, rec
}

func login(t *testing.T, client *Client) {
	require.NoError(t, client.Login(context.Background(), "alice", "alice@example.com"))
}

func TestUnauthorized(t *testing.T) {
	client, _, rec := setup(t, 0)

	_, err := client.Breeds(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, rec.Warned("client.breeds"))

	_, err = client.SearchDogs(context.Background(), SearchParams{Size: 25})
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestLoginLogoutCookies(t *testing.T) {
	client, service, _ := setup(t, 0)
	service.breeds = []string{"Beagle"}

	require.Error(t, client.Login(context.Background(), "", "alice@example.com"))

	login(t, client)
	cookies := client.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookie, cookies[0].Name)

	breeds, err := client.Breeds(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Beagle"}, breeds)

	// a second client restores the session from saved cookies
	restored, err := NewClient(ClientOptions{BaseUrl: client.baseUrl.String()}, &telemetrytest.Recorder{})
	require.NoError(t, err)
	restored.SetCookies(cookies)
	_, err = restored.Breeds(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))
	require.Empty(t, client.Cookies())
	_, err = client.Breeds(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	// logging out of an expired session is not an error
	require.NoError(t, client.Logout(context.Background()))
}

func TestCookieExpiry(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "token", Path: "/", Expires: expires})
		http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "r", Path: "/", MaxAge: 600})
		http.SetCookie(w, &http.Cookie{Name: "tab", Value: "t", Path: "/"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Clock:   chrono.FixedTime{At: at},
	}, &telemetrytest.Recorder{})
	require.NoError(t, err)
	login(t, client)

	got := map[string]time.Time{}
	for _, cookie := range client.Cookies() {
		got[cookie.Name] = cookie.Expires
	}
	require.Len(t, got, 3)
	require.True(t, expires.Equal(got[sessionCookie]), got[sessionCookie])
	require.True(t, at.Add(10*time.Minute).Equal(got["refresh"]), got["refresh"])
	require.True(t, got["tab"].IsZero())

	// restored cookies keep their expiry
	restored, err := NewClient(ClientOptions{BaseUrl: server.URL}, &telemetrytest.Recorder{})
	require.NoError(t, err)
	restored.SetCookies(client.Cookies())
	for _, cookie := range restored.Cookies() {
		require.True(t, got[cookie.Name].Equal(cookie.Expires), cookie.Name)
	}

	require.NoError(t, client.clearCookies())
	require.Empty(t, client.Cookies())
}

func TestSearchQuery(t *testing.T) {
	two := 2
	ten := 10

	testCases := []struct {
		name     string
		params   SearchParams
		expected map[string][]string
	}{
		{
			name:   "defaults",
			params: SearchParams{Sort: Sort{Field: SortBreed, Direction: Asc}, Size: 25},
			expected: map[string][]string{
				"sort": {"breed:asc"},
				"size": {"25"},
				"from": {"0"},
			},
		},
		{
			name: "every filter",
			params: SearchParams{
				Sort:     Sort{Field: SortAge, Direction: Asc},
				Size:     25,
				From:     50,
				Breeds:   []string{"Beagle"},
				AgeMin:   &two,
				AgeMax:   &ten,
				ZipCodes: []string{"78701", "78702"},
			},
			expected: map[string][]string{
				"sort":       {"age:asc"},
				"size":       {"25"},
				"from":       {"50"},
				"breeds[]":   {"Beagle"},
				"ageMin":     {"2"},
				"ageMax":     {"10"},
				"zipCodes[]": {"78701", "78702"},
			},
		},
		{
			name:   "empty zip code constraint",
			params: SearchParams{Size: 25, ZipCodes: []string{}},
			expected: map[string][]string{
				"size":       {"25"},
				"from":       {"0"},
				"zipCodes[]": {""},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, map[string][]string(searchQuery(test.params)))
			require.Empty(t, diff)
		})
	}
}

func TestSearchDogsOverHttp(t *testing.T) {
	client, service, _ := setup(t, 0)
	service.dogs["a"] = Dog{ID: "a", Breed: "Beagle"}
	login(t, client)

	res, err := client.SearchDogs(context.Background(), SearchParams{
		Sort:     Sort{Field: SortBreed, Direction: Desc},
		Size:     25,
		Breeds:   []string{"Beagle"},
		ZipCodes: []string{},
	})
	require.NoError(t, err)
	require.Equal(t, SearchResult{ResultIDs: []string{"a"}, Total: 1}, res)

	require.Len(t, service.searches, 1)
	query := service.searches[0]
	require.Equal(t, []string{"breed:desc"}, query["sort"])
	require.Equal(t, []string{""}, query["zipCodes[]"])
}

func TestDogsBatchesAndCaches(t *testing.T) {
	client, service, rec := setup(t, 1000)
	login(t, client)

	var ids []string
	for i := 0; i < 150; i++ {
		id := fmt.Sprintf("dog-%03d", i)
		service.dogs[id] = Dog{ID: id, Name: fmt.Sprintf("Dog %d", i), Age: i % 15}
		ids = append(ids, id)
	}
	// unknown ids are skipped, duplicates are only requested once
	ids = append(ids, "unknown", "dog-000")

	dogs, err := client.Dogs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, dogs, 151)
	require.Equal(t, "dog-000", dogs[0].ID)
	require.Equal(t, "dog-149", dogs[149].ID)
	require.Equal(t, "dog-000", dogs[150].ID)

	require.Len(t, service.detailCalls, 2)
	require.Len(t, service.detailCalls[0], 100)
	require.Len(t, service.detailCalls[1], 51)

	// everything known is now served from the cache
	dogs, err = client.Dogs(context.Background(), ids[:150])
	require.NoError(t, err)
	require.Len(t, dogs, 150)
	require.Len(t, service.detailCalls, 2)
	require.NotEmpty(t, rec.Reports("count"))

	empty, err := client.Dogs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSearchLocationsAndMatch(t *testing.T) {
	client, service, _ := setup(t, 0)
	login(t, client)

	res, err := client.SearchLocations(context.Background(), LocationQuery{City: "Austin", Size: 100})
	require.NoError(t, err)
	require.Equal(t, "78701", res.Results[0].ZipCode)
	require.Equal(t, []LocationQuery{{City: "Austin", Size: 100}}, service.locations)

	match, err := client.Match(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, "b", match)

	// match requests are not split into batches
	ids := make([]string, MaxBatchSize+50)
	for i := range ids {
		ids[i] = fmt.Sprintf("dog-%d", i)
	}
	match, err = client.Match(context.Background(), ids)
	require.NoError(t, err)
	require.Equal(t, ids[len(ids)-1], match)
}

func TestOnePerBreed(t *testing.T) {
	client, service, _ := setup(t, 0)
	login(t, client)

	service.breeds = []string{"Beagle", "Poodle", "Pug"}
	service.dogs["b1"] = Dog{ID: "b1", Breed: "Beagle"}
	service.dogs["p1"] = Dog{ID: "p1", Breed: "Poodle"}

	dogs, err := client.OnePerBreed(context.Background())
	require.NoError(t, err)
	diff := cmp.Diff([]Dog{
		{ID: "b1", Breed: "Beagle"},
		{ID: "p1", Breed: "Poodle"},
	}, dogs)
	require.Empty(t, diff)

	for _, query := range service.searches {
		require.Equal(t, []string{"1"}, query["size"])
		require.Empty(t, query["sort"])
	}
}

func TestStatusError(t *testing.T) {
	client, _, rec := setup(t, 0)

	err := client.do(context.Background(), "client.test", http.MethodGet, "/broken", nil, nil, nil)
	var statusErr StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
	require.True(t, rec.Broken("client.test"))
}
