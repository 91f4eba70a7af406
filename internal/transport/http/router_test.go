package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"propertyad/internal/form"
	"propertyad/internal/handler"
	"propertyad/internal/model"
	"propertyad/internal/service"
)

// =============================================================================
// Helpers
// =============================================================================

type stubPreviewer struct{}

func (stubPreviewer) Preview(ctx context.Context, f model.ImageFile) (string, error) {
	return "preview:" + f.Name, nil
}

type stubListingReader struct {
	listings map[string]*model.Listing
}

func (s stubListingReader) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if l, ok := s.listings[id]; ok {
		return l, nil
	}
	return nil, model.ErrListingMissing
}

type testServer struct {
	t      *testing.T
	router stdhttp.Handler
	store  *form.Store
}

func newTestServer(t *testing.T, listings *handler.ListingHandler) *testServer {
	t.Helper()
	store := form.NewStore(form.Config{
		Submitter: service.NewSimulatedSubmitter(0, nil),
		Previewer: stubPreviewer{},
	})
	t.Cleanup(store.Close)

	router := NewRouter(RouterConfig{
		FormHandler:    handler.NewFormHandler(store, model.DefaultOptions(), nil),
		ListingHandler: listings,
	})
	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type upload struct {
	name        string
	contentType string
	data        []byte
}

func (s *testServer) upload(formID string, files ...upload) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			s.t.Fatalf("create part: %v", err)
		}
		part.Write(f.data)
	}
	mw.Close()

	req := httptest.NewRequest(stdhttp.MethodPost, "/forms/"+formID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type snapshotResponse struct {
	ID     string                 `json:"id"`
	State  string                 `json:"state"`
	Draft  map[string]interface{} `json:"draft"`
	Images []struct {
		Name          string `json:"name"`
		Preview       string `json:"preview"`
		PreviewStatus string `json:"preview_status"`
	} `json:"images"`
	Errors map[string]string `json:"errors"`
	Notice string            `json:"notice"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors map[string]string `json:"errors"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func (s *testServer) createForm() string {
	s.t.Helper()
	rec := s.do(stdhttp.MethodPost, "/forms", nil)
	expectStatus(s.t, rec, stdhttp.StatusCreated)
	snap := decode[snapshotResponse](s.t, rec)
	if snap.ID == "" || snap.State != string(form.StateEditing) {
		s.t.Fatalf("unexpected new form: %+v", snap)
	}
	return snap.ID
}

var jpegUpload = upload{name: "front.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}}

// =============================================================================
// Tests
// =============================================================================

func TestRouter_HealthAndOptions(t *testing.T) {
	s := newTestServer(t, nil)

	expectStatus(t, s.do(stdhttp.MethodGet, "/health", nil), stdhttp.StatusOK)

	rec := s.do(stdhttp.MethodGet, "/options", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	opts := decode[model.Options](t, rec)
	if len(opts.States) != 36 || len(opts.Facing) != 8 {
		t.Errorf("options: %d states, %d facings", len(opts.States), len(opts.Facing))
	}
}

func TestRouter_UnknownForm(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{stdhttp.MethodGet, "/forms/nope"},
		{stdhttp.MethodDelete, "/forms/nope"},
		{stdhttp.MethodPost, "/forms/nope/submit"},
	} {
		rec := s.do(tc.method, tc.path, nil)
		if rec.Code != stdhttp.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouter_EditField(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	rec := s.do(stdhttp.MethodPut, "/forms/"+id+"/fields/adTitle", map[string]string{"value": "Sea view"})
	expectStatus(t, rec, stdhttp.StatusOK)
	if got := decode[snapshotResponse](t, rec).Draft["adTitle"]; got != "Sea view" {
		t.Errorf("draft.adTitle = %v", got)
	}

	rec = s.do(stdhttp.MethodPut, "/forms/"+id+"/fields/price", map[string]interface{}{"value": 1500000})
	expectStatus(t, rec, stdhttp.StatusOK)
	if got := decode[snapshotResponse](t, rec).Draft["price"]; got != float64(1500000) {
		t.Errorf("draft.price = %v", got)
	}

	rec = s.do(stdhttp.MethodPut, "/forms/"+id+"/fields/colour", map[string]string{"value": "blue"})
	expectStatus(t, rec, stdhttp.StatusBadRequest)
	if got := decode[errorResponse](t, rec).Error.Code; got != model.CodeUnknownField {
		t.Errorf("code = %q, want %q", got, model.CodeUnknownField)
	}

	rec = s.do(stdhttp.MethodPut, "/forms/"+id+"/fields/adTitle", map[string]interface{}{"value": []int{1}})
	expectStatus(t, rec, stdhttp.StatusBadRequest)
}

func TestRouter_SubmitEmptyForm(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	rec := s.do(stdhttp.MethodPost, "/forms/"+id+"/submit", nil)
	expectStatus(t, rec, stdhttp.StatusUnprocessableEntity)

	resp := decode[errorResponse](t, rec)
	if resp.Error.Code != model.CodeValidationFailed {
		t.Errorf("code = %q, want %q", resp.Error.Code, model.CodeValidationFailed)
	}
	if len(resp.Errors) != 17 {
		t.Errorf("got %d field errors, want 17: %v", len(resp.Errors), resp.Errors)
	}
	if resp.Errors["bhk"] != "Please select BHK" {
		t.Errorf("errors[bhk] = %q", resp.Errors["bhk"])
	}
}

func TestRouter_UploadAndRemoveImages(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	rec := s.upload(id, jpegUpload, upload{name: "notes.txt", contentType: "text/plain", data: []byte("hello")})
	expectStatus(t, rec, stdhttp.StatusOK)
	snap := decode[snapshotResponse](t, rec)
	if len(snap.Images) != 1 || snap.Images[0].Name != "front.jpg" {
		t.Fatalf("images = %+v", snap.Images)
	}
	if snap.Errors["images"] != model.MsgImagesRejected {
		t.Errorf("errors[images] = %q", snap.Errors["images"])
	}

	rec = s.upload(id, upload{name: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF")})
	expectStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if got := decode[errorResponse](t, rec).Error.Code; got != model.CodeImagesRejected {
		t.Errorf("code = %q, want %q", got, model.CodeImagesRejected)
	}

	expectStatus(t, s.do(stdhttp.MethodDelete, "/forms/"+id+"/images/x", nil), stdhttp.StatusBadRequest)

	rec = s.do(stdhttp.MethodDelete, "/forms/"+id+"/images/5", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if n := len(decode[snapshotResponse](t, rec).Images); n != 1 {
		t.Errorf("out of range remove changed images: %d", n)
	}

	rec = s.do(stdhttp.MethodDelete, "/forms/"+id+"/images/0", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if n := len(decode[snapshotResponse](t, rec).Images); n != 0 {
		t.Errorf("images after remove = %d, want 0", n)
	}
}

func TestRouter_UploadOverCap(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	batch := make([]upload, model.MaxImageCount+1)
	for i := range batch {
		batch[i] = upload{name: fmt.Sprintf("img-%d.jpg", i), contentType: "image/jpeg", data: []byte{0xff}}
	}

	rec := s.upload(id, batch...)
	expectStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if got := decode[errorResponse](t, rec).Error.Code; got != model.CodeTooManyImages {
		t.Errorf("code = %q, want %q", got, model.CodeTooManyImages)
	}
}

func TestRouter_SubmitValidForm(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	fields := map[string]interface{}{
		"type":             "Flats / Apartments",
		"bhk":              "2",
		"bathrooms":        "2",
		"furnishing":       "Furnished",
		"projectStatus":    "Ready to Move",
		"listedBy":         "Owner",
		"superBuiltupArea": 1200,
		"carpetArea":       "1000",
		"totalFloors":      10,
		"floorNo":          3,
		"carParking":       "1",
		"facing":           "East",
		"adTitle":          "Spacious 2BHK",
		"description":      "Well maintained flat.",
		"price":            5000000,
		"state":            "Karnataka",
	}
	for field, value := range fields {
		rec := s.do(stdhttp.MethodPut, "/forms/"+id+"/fields/"+field, map[string]interface{}{"value": value})
		expectStatus(t, rec, stdhttp.StatusOK)
	}
	expectStatus(t, s.upload(id, jpegUpload), stdhttp.StatusOK)

	rec := s.do(stdhttp.MethodPost, "/forms/"+id+"/submit", nil)
	expectStatus(t, rec, stdhttp.StatusAccepted)
	if state := decode[snapshotResponse](t, rec).State; state != string(form.StateSubmitting) {
		t.Errorf("state = %q, want submitting", state)
	}

	c, err := s.store.Get(id)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	c.Wait()

	rec = s.do(stdhttp.MethodGet, "/forms/"+id, nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	snap := decode[snapshotResponse](t, rec)
	if snap.State != string(form.StateEditing) || snap.Notice != form.NoticePosted {
		t.Errorf("after submit: state %q notice %q", snap.State, snap.Notice)
	}
	if len(snap.Images) != 0 || len(snap.Errors) != 0 || snap.Draft["adTitle"] != nil {
		t.Errorf("form not reset: %+v", snap)
	}
}

func TestRouter_DeleteForm(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createForm()

	expectStatus(t, s.do(stdhttp.MethodDelete, "/forms/"+id, nil), stdhttp.StatusOK)
	expectStatus(t, s.do(stdhttp.MethodGet, "/forms/"+id, nil), stdhttp.StatusNotFound)
}

func TestRouter_Listings(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(stdhttp.MethodGet, "/listings/abc", nil), stdhttp.StatusNotFound)

	reader := stubListingReader{listings: map[string]*model.Listing{
		"abc": {ID: "abc", AdTitle: "Flat", CreatedAt: time.Now()},
	}}
	s = newTestServer(t, handler.NewListingHandler(reader, nil))

	rec := s.do(stdhttp.MethodGet, "/listings/abc", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if !strings.Contains(rec.Body.String(), `"adTitle":"Flat"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	expectStatus(t, s.do(stdhttp.MethodGet, "/listings/missing", nil), stdhttp.StatusNotFound)
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(stdhttp.MethodOptions, "/forms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", stdhttp.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
