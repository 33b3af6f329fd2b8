package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	handler "swasthya/handler/http"
	"swasthya/src/answer"
	"swasthya/src/index"
	"swasthya/src/transliterate"
)

type fixedEmbedder struct {
	seen string
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.seen = text
	return []float32{1}, nil
}

type fixedRetriever struct{}

func (fixedRetriever) Retrieve(ctx context.Context, vector []float32) ([]index.Entry, error) {
	return []index.Entry{{Text: "Dengue causes high fever."}}, nil
}

type fixedGenerator struct {
	reply string
}

func (f *fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

func newSMSRouter(t *testing.T, embedder answer.Embedder, generator answer.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	synthesizer := answer.NewSynthesizer(embedder, fixedRetriever{}, generator, time.Second)
	h := handler.NewHandler(synthesizer, transliterate.New(), nil, nil, nil, "", handler.HealthDeps{})

	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func postSMS(router *gin.Engine, body string) *httptest.ResponseRecorder {
	form := url.Values{"Body": {body}}
	req := httptest.NewRequest(http.MethodPost, "/api/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSMSBlankBodyGetsSentinelReply(t *testing.T) {
	embedder := &fixedEmbedder{}
	router := newSMSRouter(t, embedder, &fixedGenerator{reply: "unused"})

	for _, body := range []string{"", "   "} {
		w := postSMS(router, body)

		if w.Code != http.StatusOK {
			t.Errorf("body %q: status = %d, want %d", body, w.Code, http.StatusOK)
		}
		if got := w.Body.String(); got != transliterate.UnintelligibleReply {
			t.Errorf("body %q: reply = %q, want the sentinel", body, got)
		}
		if embedder.seen != "" {
			t.Errorf("body %q reached the answering path as %q", body, embedder.seen)
		}
	}
}

func TestSMSRepliesWithSynthesizedAnswer(t *testing.T) {
	embedder := &fixedEmbedder{}
	router := newSMSRouter(t, embedder, &fixedGenerator{reply: "आराम करें और पानी पियें"})

	w := postSMS(router, "kya hai")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "आराम करें और पानी पियें" {
		t.Errorf("reply = %q, want the generator reply", got)
	}
	if embedder.seen != "क्या है" {
		t.Errorf("embedder saw %q, want the normalized question", embedder.seen)
	}
}
