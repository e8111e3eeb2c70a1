package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/examhall/backend/internal/model"
)

// ResultClient talks to the remote result store: one aggregate record per
// exam name, each holding the ordered participant results. The store offers
// no compare-and-swap; updates replace the whole record.
type ResultClient struct {
	client
}

// NewResultClient creates a client for the result store at baseURL.
func NewResultClient(baseURL string, timeout time.Duration) *ResultClient {
	return &ResultClient{client: newClient(baseURL, timeout)}
}

// List fetches every aggregate in the store.
func (c *ResultClient) List(ctx context.Context) ([]model.ExamResultAggregate, error) {
	var aggregates []model.ExamResultAggregate
	if err := c.do(ctx, http.MethodGet, "/resultData", nil, &aggregates); err != nil {
		return nil, err
	}
	return aggregates, nil
}

// Create stores a new aggregate and returns it with the store-assigned id.
func (c *ResultClient) Create(ctx context.Context, agg model.ExamResultAggregate) (*model.ExamResultAggregate, error) {
	agg.ID = ""
	var created model.ExamResultAggregate
	if err := c.do(ctx, http.MethodPost, "/resultData", agg, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Replace overwrites the aggregate with the given id wholesale.
func (c *ResultClient) Replace(ctx context.Context, id string, agg model.ExamResultAggregate) error {
	return c.do(ctx, http.MethodPut, "/resultData/"+url.PathEscape(id), agg, nil)
}

// Delete removes an aggregate record.
func (c *ResultClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/resultData/"+url.PathEscape(id), nil, nil)
}

// FindByExamName fetches all aggregates and returns the one whose exam name
// matches exactly, or nil if none does.
func (c *ResultClient) FindByExamName(ctx context.Context, examName string) (*model.ExamResultAggregate, []model.ExamResultAggregate, error) {
	aggregates, err := c.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list aggregates: %w", err)
	}
	for i := range aggregates {
		if aggregates[i].ExamName == examName {
			return &aggregates[i], aggregates, nil
		}
	}
	return nil, aggregates, nil
}
