/*------------------------------------------------------------------------------
* searchsink.go : arrival search/export sink for the service shell
*
* Indexes get_tt results into Elasticsearch for ad hoc search, using the v5
* client go.mod already carries.
*-----------------------------------------------------------------------------*/
package searchsink

import (
	"context"

	"github.com/google/uuid"
	elastic "gopkg.in/olivere/elastic.v5"

	"github.com/pkg/errors"

	"taupgo/internal/session"
)

const indexName = "taupgo-arrivals"

// Sink indexes get_tt results into Elasticsearch, one document per request.
type Sink struct {
	client *elastic.Client
}

// Open connects to the Elasticsearch cluster at url.
func Open(url string) (*Sink, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, errors.Wrap(err, "searchsink: connect")
	}
	return &Sink{client: client}, nil
}

// requestDoc is one indexed get_tt call: correlation id, query geometry and
// the arrivals it produced.
type requestDoc struct {
	ID            string            `json:"id"`
	ModelName     string            `json:"model_name"`
	SourceDepthKm float64           `json:"source_depth_km"`
	DeltaDeg      float64           `json:"delta_deg"`
	Arrivals      []session.Arrival `json:"arrivals"`
}

// IndexRequest indexes one get_tt call and returns the correlation id it was
// indexed under, for inclusion in the HTTP response / logs.
func (s *Sink) IndexRequest(ctx context.Context, modelName string, sourceDepthKm, deltaDeg float64, arrivals []session.Arrival) (string, error) {
	id := uuid.New().String()
	doc := requestDoc{
		ID:            id,
		ModelName:     modelName,
		SourceDepthKm: sourceDepthKm,
		DeltaDeg:      deltaDeg,
		Arrivals:      arrivals,
	}
	_, err := s.client.Index().Index(indexName).Type("request").Id(id).BodyJson(doc).Do(ctx)
	if err != nil {
		return "", errors.Wrap(err, "searchsink: index request")
	}
	return id, nil
}
