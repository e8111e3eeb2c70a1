package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/examhall/backend/internal/model"
)

// fakeResultStore emulates the remote result aggregate resource for tests:
// GET/POST /resultData and PUT/DELETE /resultData/{id}.
type fakeResultStore struct {
	mu         sync.Mutex
	aggregates []model.ExamResultAggregate
	nextID     int

	listCalls    int
	createCalls  int
	replaceCalls int

	failReads  bool
	failWrites bool
}

func newFakeResultStore(seed ...model.ExamResultAggregate) *fakeResultStore {
	return &fakeResultStore{aggregates: seed, nextID: 100}
}

func (f *fakeResultStore) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(f.handle))
}

func (f *fakeResultStore) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/resultData":
		f.listCalls++
		if f.failReads {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(f.aggregates)

	case r.Method == http.MethodPost && r.URL.Path == "/resultData":
		f.createCalls++
		if f.failWrites {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var agg model.ExamResultAggregate
		json.NewDecoder(r.Body).Decode(&agg)
		agg.ID = strconv.Itoa(f.nextID)
		f.nextID++
		f.aggregates = append(f.aggregates, agg)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(agg)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/resultData/"):
		f.replaceCalls++
		if f.failWrites {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/resultData/")
		var agg model.ExamResultAggregate
		json.NewDecoder(r.Body).Decode(&agg)
		for i := range f.aggregates {
			if f.aggregates[i].ID == id {
				agg.ID = id
				f.aggregates[i] = agg
				json.NewEncoder(w).Encode(agg)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/resultData/"):
		id := strings.TrimPrefix(r.URL.Path, "/resultData/")
		for i := range f.aggregates {
			if f.aggregates[i].ID == id {
				f.aggregates = append(f.aggregates[:i], f.aggregates[i+1:]...)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("{}"))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeResultStore) snapshot() []model.ExamResultAggregate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ExamResultAggregate, len(f.aggregates))
	copy(out, f.aggregates)
	return out
}

func (f *fakeResultStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.replaceCalls
}
