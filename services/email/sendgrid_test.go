package emailsvc

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/tests"
)

type sgRequest struct {
	auth string
	path string
	body []byte
}

type sgPayload struct {
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Personalizations []struct {
		Subject string `json:"subject"`
		To      []struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
	Categories []string `json:"categories"`
}

func newTestSendgrid(t *testing.T) (*sendgridService, *core.Config, <-chan sgRequest) {
	t.Helper()
	reqs := make(chan sgRequest, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs <- sgRequest{auth: r.Header.Get("Authorization"), path: r.URL.Path, body: body}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(ts.Close)

	conf := testutil.NewConfig(t)
	conf.SendgridApiKey = "sg-test-key"
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(conf, logger)

	svc := NewSendgridService(conf, logger).(*sendgridService)
	svc.host = ts.URL
	return svc, conf, reqs
}

func TestSendgridService_notificacion(t *testing.T) {
	svc, conf, reqs := newTestSendgrid(t)

	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "Ana López", Address: "ana@tupad.edu.ar"}},
		Subject:      "Próxima evaluación: Parcial 1",
		TemplateName: "notificacion",
		TemplateData: notificacion.Notificacion{Titulo: "Próxima evaluación: Parcial 1", Mensaje: "Aula 3, 14 hs."},
	})

	var req sgRequest
	select {
	case req = <-reqs:
	case <-time.After(2 * time.Second):
		t.Fatal("no request sent")
	}
	assert.Equal(t, "Bearer sg-test-key", req.auth)
	assert.Equal(t, endpoint, req.path)

	var payload sgPayload
	require.NoError(t, json.Unmarshal(req.body, &payload))
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "["+conf.AppName+"] Próxima evaluación: Parcial 1", payload.Personalizations[0].Subject)
	require.Len(t, payload.Personalizations[0].To, 1)
	assert.Equal(t, "ana@tupad.edu.ar", payload.Personalizations[0].To[0].Email)
	assert.Equal(t, conf.DefaultFromEmail().Address, payload.From.Email)
	assert.Equal(t, []string{"notificacion"}, payload.Categories)

	require.NotEmpty(t, payload.Content)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
	assert.Contains(t, payload.Content[0].Value, "Aula 3, 14 hs.")
}

func TestSendgridService_skipsEmpty(t *testing.T) {
	svc, _, reqs := newTestSendgrid(t)

	svc.SendMessages(
		&core.EmailMessage{Subject: "Sin destinatarios", BodyStr: "hola"},
		&core.EmailMessage{To: []mail.Address{{Address: "ana@tupad.edu.ar"}}, Subject: "Sin contenido"},
	)

	select {
	case req := <-reqs:
		t.Errorf("unexpected request: %s", req.body)
	case <-time.After(100 * time.Millisecond):
	}
}
