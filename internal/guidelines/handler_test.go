package guidelines_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/internal/guidelines"
	"github.com/JaimeStill/guidesync/pkg/routes"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type guidelineBody struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	TrustName           string   `json:"trustName"`
	MedicalSpeciality   string   `json:"medicalSpeciality"`
	FormattedSpeciality string   `json:"formattedSpeciality"`
	FileType            string   `json:"fileType"`
	URL                 string   `json:"url"`
	Content             string   `json:"content"`
	Tags                []string `json:"tags"`
	IsActive            bool     `json:"isActive"`
	CreatedBy           string   `json:"createdBy"`
	UpdatedBy           *string  `json:"updatedBy"`
}

type pageBody struct {
	Data       []guidelineBody `json:"data"`
	Query      string          `json:"query"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func newServer(f *fixture) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())
	return mux
}

func serve(t *testing.T, mux http.Handler, caller auth.Caller, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req.WithContext(auth.WithCaller(req.Context(), caller)))
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

const createJSON = `{
	"trustName": "St George's Hospital",
	"title": "Sepsis Six",
	"medicalSpeciality": "general_medicine",
	"content": "Give oxygen.",
	"tags": "sepsis, emergency"
}`

func TestHandlerCreateJSON(t *testing.T) {
	f := newFixture()
	mux := newServer(f)

	rec := serve(t, mux, adminCaller, jsonRequest(http.MethodPost, "/guidelines", createJSON))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "Guideline created successfully" {
		t.Errorf("envelope = %+v", env)
	}

	g := decodeData[guidelineBody](t, env)
	if g.FileType != "text" || g.Content != "Give oxygen." || g.URL != "" {
		t.Errorf("content fields = %q %q %q", g.FileType, g.Content, g.URL)
	}
	if g.FormattedSpeciality != "General Medicine" {
		t.Errorf("FormattedSpeciality = %q", g.FormattedSpeciality)
	}
	if len(g.Tags) != 2 || g.Tags[0] != "sepsis" || g.Tags[1] != "emergency" {
		t.Errorf("Tags = %v", g.Tags)
	}
	if g.CreatedBy != "admin-1" {
		t.Errorf("CreatedBy = %q", g.CreatedBy)
	}
}

func TestHandlerCreateMultipart(t *testing.T) {
	f := newFixture()
	mux := newServer(f)

	req := multipartRequest(t, http.MethodPost, "/guidelines", map[string]string{
		"trustName":         "Manchester Royal Infirmary",
		"title":             "Stroke Pathway",
		"medicalSpeciality": "neurology",
		"tags":              "stroke,thrombolysis",
	}, "stroke.pdf", pdfBytes)

	rec := serve(t, mux, adminCaller, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	g := decodeData[guidelineBody](t, decodeEnvelope(t, rec))
	if g.FileType != "pdf" || g.Content != "" {
		t.Errorf("FileType = %q, Content = %q", g.FileType, g.Content)
	}
	if !strings.HasPrefix(g.URL, "https://files.test/guidelines/"+g.ID+"/") {
		t.Errorf("URL = %q", g.URL)
	}
	if len(g.Tags) != 2 {
		t.Errorf("Tags = %v", g.Tags)
	}
}

func TestHandlerCreateRejected(t *testing.T) {
	fields := map[string]string{
		"trustName":         "Manchester Royal Infirmary",
		"title":             "Stroke Pathway",
		"medicalSpeciality": "neurology",
	}

	tests := []struct {
		name   string
		caller auth.Caller
		req    func(t *testing.T) *http.Request
		status int
	}{
		{
			name:   "anonymous",
			caller: anonymous,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPost, "/guidelines", createJSON) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "clinician",
			caller: clinicianCaller,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPost, "/guidelines", createJSON) },
			status: http.StatusForbidden,
		},
		{
			name:   "anonymous malformed json",
			caller: anonymous,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPost, "/guidelines", `{"title":`) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "clinician malformed json",
			caller: clinicianCaller,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPost, "/guidelines", `{"title":`) },
			status: http.StatusForbidden,
		},
		{
			name:   "clinician file too large",
			caller: clinicianCaller,
			req: func(t *testing.T) *http.Request {
				data := append([]byte("%PDF-1.4\n"), make([]byte, maxUpload)...)
				return multipartRequest(t, http.MethodPost, "/guidelines", fields, "big.pdf", data)
			},
			status: http.StatusForbidden,
		},
		{
			name:   "malformed json",
			caller: adminCaller,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPost, "/guidelines", `{"title":`) },
			status: http.StatusBadRequest,
		},
		{
			name:   "missing content",
			caller: adminCaller,
			req: func(*testing.T) *http.Request {
				return jsonRequest(http.MethodPost, "/guidelines", `{"title":"A","trustName":"B","medicalSpeciality":"other"}`)
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown speciality",
			caller: adminCaller,
			req: func(*testing.T) *http.Request {
				return jsonRequest(http.MethodPost, "/guidelines", `{"title":"A","trustName":"B","medicalSpeciality":"alchemy","content":"x"}`)
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "non pdf file",
			caller: adminCaller,
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, http.MethodPost, "/guidelines", fields, "notes.txt", []byte("plain text notes"))
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "file too large",
			caller: adminCaller,
			req: func(t *testing.T) *http.Request {
				data := append([]byte("%PDF-1.4\n"), make([]byte, maxUpload)...)
				return multipartRequest(t, http.MethodPost, "/guidelines", fields, "big.pdf", data)
			},
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rec := serve(t, newServer(f), tt.caller, tt.req(t))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Error == "" {
				t.Errorf("envelope = %+v", env)
			}
			if f.files.count() != 0 {
				t.Error("rejected request stored a file")
			}
		})
	}
}

func TestHandlerMutationsAuthorizeFirst(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	g := mustCreate(t, f, textRequest("Sepsis Six", "St George's Hospital", guidelines.Emergency, "Give oxygen."))
	target := "/guidelines/" + g.ID.String()

	tests := []struct {
		name   string
		caller auth.Caller
		req    func(t *testing.T) *http.Request
		status int
	}{
		{
			name:   "anonymous update malformed json",
			caller: anonymous,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPut, target, `{"title":`) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "clinician update malformed json",
			caller: clinicianCaller,
			req:    func(*testing.T) *http.Request { return jsonRequest(http.MethodPut, target, `{"title":`) },
			status: http.StatusForbidden,
		},
		{
			name:   "clinician update invalid isActive",
			caller: clinicianCaller,
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, http.MethodPut, target, map[string]string{"isActive": "maybe"}, "", nil)
			},
			status: http.StatusForbidden,
		},
		{
			name:   "anonymous delete",
			caller: anonymous,
			req:    func(*testing.T) *http.Request { return httptest.NewRequest(http.MethodDelete, target, nil) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "clinician delete unknown id",
			caller: clinicianCaller,
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodDelete, "/guidelines/not-a-uuid", nil)
			},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, mux, tt.caller, tt.req(t))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body)
			}
		})
	}

	rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, target, nil))
	got := decodeData[guidelineBody](t, decodeEnvelope(t, rec))
	if rec.Code != http.StatusOK || got.Title != "Sepsis Six" {
		t.Errorf("guideline changed by rejected callers: status = %d, title = %q", rec.Code, got.Title)
	}
}

func TestHandlerFind(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	g := mustCreate(t, f, textRequest("Sepsis Six", "St George's Hospital", guidelines.Emergency, "Give oxygen."))

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"found", "/guidelines/" + g.ID.String(), http.StatusOK},
		{"unknown", "/guidelines/00000000-0000-0000-0000-000000000000", http.StatusNotFound},
		{"malformed", "/guidelines/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	seedCatalog(t, f)

	t.Run("filtered", func(t *testing.T) {
		rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines?tags=stroke&limit=5", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		page := decodeData[pageBody](t, decodeEnvelope(t, rec))
		if page.Pagination.Total != 1 || page.Data[0].Title != "Stroke Thrombolysis" {
			t.Errorf("page = %+v", page)
		}
	})

	t.Run("bad speciality", func(t *testing.T) {
		rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines?medicalSpeciality=alchemy", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("bad isActive", func(t *testing.T) {
		rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines?isActive=maybe", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	seedCatalog(t, f)

	rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/search?q=asthma", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	page := decodeData[pageBody](t, decodeEnvelope(t, rec))
	if page.Query != "asthma" || page.Pagination.Total != 2 {
		t.Errorf("query = %q, total = %d", page.Query, page.Pagination.Total)
	}

	rec = serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/search?search=stroke", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("search alias status = %d", rec.Code)
	}

	rec = serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing query status = %d", rec.Code)
	}
}

func TestHandlerDownload(t *testing.T) {
	f := newFixture()
	mux := newServer(f)

	req := textRequest("Stroke Pathway", "Manchester Royal Infirmary", guidelines.Neurology, "")
	req.File = pdfFile("stroke pathway.pdf")
	pdf := mustCreate(t, f, req)
	text := mustCreate(t, f, textRequest("Sepsis Six", "St George's Hospital", guidelines.Emergency, "Give oxygen."))

	rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/"+pdf.ID.String()+"/file", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Content-Disposition: %v", err)
	}
	if disposition != "attachment" || params["filename"] != "stroke pathway.pdf" {
		t.Errorf("disposition = %q, params = %v", disposition, params)
	}

	body, _ := io.ReadAll(rec.Body)
	if !bytes.Equal(body, pdfBytes) {
		t.Error("body does not match stored file")
	}

	rec = serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/"+text.ID.String()+"/file", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("text guideline status = %d, want 404", rec.Code)
	}
}

func TestHandlerUpdate(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	g := mustCreate(t, f, textRequest("Sepsis Six", "St George's Hospital", guidelines.Emergency, "Give oxygen."))
	target := "/guidelines/" + g.ID.String()

	t.Run("json", func(t *testing.T) {
		rec := serve(t, mux, adminCaller, jsonRequest(http.MethodPut, target, `{"title":"Sepsis Bundle","tags":["sepsis"]}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		body := decodeData[guidelineBody](t, decodeEnvelope(t, rec))
		if body.Title != "Sepsis Bundle" || body.UpdatedBy == nil || *body.UpdatedBy != "admin-1" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("multipart file replaces text", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, target, map[string]string{"isActive": "false"}, "sepsis.pdf", pdfBytes)
		rec := serve(t, mux, adminCaller, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		body := decodeData[guidelineBody](t, decodeEnvelope(t, rec))
		if body.FileType != "pdf" || body.IsActive {
			t.Errorf("FileType = %q, IsActive = %v", body.FileType, body.IsActive)
		}
	})

	t.Run("bad isActive", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, target, map[string]string{"isActive": "sometimes"}, "", nil)
		rec := serve(t, mux, adminCaller, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("clinician", func(t *testing.T) {
		rec := serve(t, mux, clinicianCaller, jsonRequest(http.MethodPut, target, `{"title":"X"}`))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	g := mustCreate(t, f, textRequest("Sepsis Six", "St George's Hospital", guidelines.Emergency, "Give oxygen."))
	target := "/guidelines/" + g.ID.String()

	rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodDelete, target, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	rec = serve(t, mux, adminCaller, httptest.NewRequest(http.MethodDelete, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Guideline deleted successfully" {
		t.Errorf("message = %q", env.Message)
	}

	rec = serve(t, mux, adminCaller, httptest.NewRequest(http.MethodDelete, target, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestHandlerReferenceData(t *testing.T) {
	f := newFixture()
	mux := newServer(f)
	seedCatalog(t, f)

	rec := serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/specialities", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("specialities status = %d", rec.Code)
	}
	opts := decodeData[[]guidelines.SpecialityOption](t, decodeEnvelope(t, rec))
	if len(opts) != len(guidelines.Specialities) || opts[0].Value != guidelines.Cardiology || opts[0].Label != "Cardiology" {
		t.Errorf("specialities = %v", opts)
	}

	rec = serve(t, mux, anonymous, httptest.NewRequest(http.MethodGet, "/guidelines/trusts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("trusts status = %d", rec.Code)
	}
	trusts := decodeData[[]string](t, decodeEnvelope(t, rec))
	if len(trusts) != 3 || trusts[0] != "Manchester Royal Infirmary" {
		t.Errorf("trusts = %v", trusts)
	}
}
