package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/tupad/organizador/apps/api/echo"
	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/dashboard"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/profesor"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/core/validation"
	"github.com/tupad/organizador/services/email"
	"github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/storage/database/sqlx"
	"github.com/tupad/organizador/storage/files"
	"github.com/tupad/organizador/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	conf     *core.Config
	usrRepo  usuario.Repository
	matRepo  materia.Repository
	notifSvc *notificacion.Service
}

func setup(t *testing.T) testApp {
	t.Helper()
	conf := testutil.NewConfig(t)

	// set up DB & repos
	db := testutil.PrepareDB(t, conf)
	engine := conf.Database.Engine
	usrRepo := sqlxrepos.NewUsuarioRepository(db, engine)
	matRepo := sqlxrepos.NewMateriaRepository(db, engine)
	evalRepo := sqlxrepos.NewEvaluacionRepository(db, engine)

	uploads, err := files.NewLocalStore(conf.Server.UploadsDir)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	// set up services
	validate, translator := validation.New()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	usrSvc := usuario.NewService(usrRepo, validate)
	matSvc := materia.NewService(matRepo, validate, conf)
	evalSvc := evaluacion.NewService(evalRepo, validate)
	notifSvc := notificacion.NewService(
		sqlxrepos.NewNotificacionRepository(db, engine), usrSvc, evalSvc, mailSvc, validate, conf, logger,
	)

	// set up server
	srv := NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,

			UsuarioSvc:      usrSvc,
			MateriaSvc:      matSvc,
			ProfesorSvc:     profesor.NewService(sqlxrepos.NewProfesorRepository(db, engine), validate),
			HorarioSvc:      horario.NewService(sqlxrepos.NewHorarioRepository(db, engine), matSvc, validate),
			ContenidoSvc:    contenido.NewService(sqlxrepos.NewContenidoRepository(db, engine), uploads, validate),
			EvaluacionSvc:   evalSvc,
			NotificacionSvc: notifSvc,
			DashboardSvc:    dashboard.NewService(sqlxrepos.NewDashboardRepository(db, engine)),
		},
	)
	return testApp{Server: srv, conf: conf, usrRepo: usrRepo, matRepo: matRepo, notifSvc: notifSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do runs a request against app and returns its recorder.
func do(app testApp, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, usr usuario.Usuario) string {
	token, err := GenerateToken(conf, GetUserClaims(usr, conf))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// decode unmarshals the body of rec into a new T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode() failed: %v; body %s", err, rec.Body.String())
	}
	return v
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHttpTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
