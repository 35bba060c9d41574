package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupe1-react/storefront-client/internal/api"
	"github.com/groupe1-react/storefront-client/internal/domain"
	"github.com/groupe1-react/storefront-client/internal/session"
)

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.New(srv.URL, session.NewMemoryStore()))
}

func jsonResponse(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func TestList_WrappedAndBare(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `[{"id":1,"name":"Hub","price":18000}]`,
		"wrapped": `{"data":[{"id":1,"name":"Hub","price":18000}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			service := newService(t, func(w http.ResponseWriter, r *http.Request) {
				jsonResponse(w, body)
			})

			products, err := service.List(context.Background())
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, "Hub", products[0].Name)
		})
	}
}

func TestGet_AppliesImageFallback(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"id":4,"name":"Laptop Stand","price":12500}`)
	})

	product, err := service.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, domain.PlaceholderImage, product.ImageURL)
}

func TestGet_WrappedUnderData(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data":{"id":2,"name":"Keyboard","price":65000,"image":"/img/kb.jpg"}}`)
	})

	product, err := service.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
	assert.Equal(t, "/img/kb.jpg", product.ImageURL)
}

func TestGet_UnrecognizableBody(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"message":"redirecting"}`)
	})

	_, err := service.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGet_NotFoundStatus(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"product not found"}`))
	})

	_, err := service.Get(context.Background(), 99)
	assert.True(t, api.IsNotFound(err))
}
