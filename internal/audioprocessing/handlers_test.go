package audioprocessing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ai-storyteller/scoring-service/internal/coreengine/vendoradapters"
	"ai-storyteller/scoring-service/internal/datastore"
)

type stubStore struct {
	record  *datastore.AudioRecord
	getErr  error
	listErr error
	records []datastore.AudioRecord

	savedID         string
	savedTranscript string
	savedScore      float64
	saveCalls       int
	saveErr         error
}

func (s *stubStore) GetAudio(ctx context.Context, id string) (*datastore.AudioRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

func (s *stubStore) SaveScoringResult(ctx context.Context, id string, transcript string, score float64) error {
	s.saveCalls++
	s.savedID = id
	s.savedTranscript = transcript
	s.savedScore = score
	return s.saveErr
}

func (s *stubStore) ListAudios(ctx context.Context) ([]datastore.AudioRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

type stubResolver struct {
	url   string
	err   error
	calls []string
}

func (r *stubResolver) ResolveURL(ctx context.Context, key string) (string, error) {
	r.calls = append(r.calls, key)
	if r.err != nil {
		return "", r.err
	}
	return r.url, nil
}

type handlerFixture struct {
	store       *stubStore
	resolver    *stubResolver
	transcriber *vendoradapters.MockTranscriptionAdapter
	enhancer    *vendoradapters.MockEnhancementAdapter
	router      *gin.Engine
}

func newFixture(store *stubStore, resolver *stubResolver, transcriber *vendoradapters.MockTranscriptionAdapter, enhancer *vendoradapters.MockEnhancementAdapter) *handlerFixture {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, resolver, transcriber, enhancer, zerolog.Nop())

	router := gin.New()
	router.GET("/process-audio/:audio_id", h.ProcessAudio)
	router.GET("/audios", h.ListAudios)
	router.GET("/audios/:audio_id", h.GetAudio)
	router.GET("/audios/:audio_id/diff", h.GetDiff)

	return &handlerFixture{
		store:       store,
		resolver:    resolver,
		transcriber: transcriber,
		enhancer:    enhancer,
		router:      router,
	}
}

func (f *handlerFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestProcessAudio_NotFound(t *testing.T) {
	f := newFixture(
		&stubStore{getErr: datastore.ErrAudioNotFound},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if len(f.transcriber.Calls) != 0 {
		t.Errorf("transcriber called for missing record")
	}
}

func TestProcessAudio_NoLocation(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{WholeStory: "a story"}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(f.transcriber.Calls) != 0 || len(f.resolver.calls) != 0 {
		t.Errorf("external collaborators called for a record without a location")
	}
}

func TestProcessAudio_EmptyStorySkipsScoring(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{FilePath: "/uploads/a.wav"}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{TranscriptText: "should not be used"},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp ProcessAudioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Transcript != nil || resp.EnhancedTranscript != nil || resp.Score != nil {
		t.Errorf("response fields not null: %+v", resp)
	}
	if len(f.transcriber.Calls) != 0 {
		t.Errorf("transcriber called despite empty story")
	}
	if f.store.saveCalls != 0 {
		t.Errorf("record persisted despite empty story")
	}
}

func TestProcessAudio_Success(t *testing.T) {
	story := "the cat sat on the mat"
	transcript := "the cat sat on the mat"
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{FilePath: "/uploads/a.wav", WholeStory: story}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{TranscriptText: transcript},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp ProcessAudioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Transcript == nil || *resp.Transcript != transcript {
		t.Errorf("transcript = %v, want %q", resp.Transcript, transcript)
	}
	if resp.Score == nil || *resp.Score != 100 {
		t.Errorf("score = %v, want 100", resp.Score)
	}

	// Direct file paths go to the provider untouched.
	if got := f.transcriber.Calls[0].AudioFileURL; got != "/uploads/a.wav" {
		t.Errorf("audio URL = %q, want file path", got)
	}

	if f.store.saveCalls != 1 {
		t.Fatalf("save calls = %d, want 1", f.store.saveCalls)
	}
	if f.store.savedTranscript != transcript || f.store.savedScore != 100 {
		t.Errorf("persisted transcript=%q score=%v", f.store.savedTranscript, f.store.savedScore)
	}
}

func TestProcessAudio_ObjectKeyWinsOverFilePath(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{
			S3Key:      "audios/a.wav",
			FilePath:   "/uploads/a.wav",
			WholeStory: "hello there",
		}},
		&stubResolver{url: "https://cdn.example.com/audios/a.wav"},
		&vendoradapters.MockTranscriptionAdapter{TranscriptText: "hello there"},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(f.resolver.calls) != 1 || f.resolver.calls[0] != "audios/a.wav" {
		t.Fatalf("resolver calls = %v, want [audios/a.wav]", f.resolver.calls)
	}
	if got := f.transcriber.Calls[0].AudioFileURL; got != "https://cdn.example.com/audios/a.wav" {
		t.Errorf("audio URL = %q, want resolved CDN URL", got)
	}
}

func TestProcessAudio_TranscriptionFailureIsBadGateway(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{FilePath: "/uploads/a.wav", WholeStory: "a story"}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{Err: &vendoradapters.TranscriptionError{Err: errors.New("timeout")}},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if f.store.saveCalls != 0 {
		t.Errorf("record persisted despite provider failure")
	}
}

func TestProcessAudio_EnhancementFailureIsBadGateway(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{FilePath: "/uploads/a.wav", WholeStory: "a story"}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{TranscriptText: "a story"},
		&vendoradapters.MockEnhancementAdapter{Err: &vendoradapters.EnhancementError{Err: errors.New("quota")}},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestProcessAudio_SaveFailure(t *testing.T) {
	f := newFixture(
		&stubStore{
			record:  &datastore.AudioRecord{FilePath: "/uploads/a.wav", WholeStory: "a story"},
			saveErr: errors.New("write conflict"),
		},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{TranscriptText: "a story"},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/process-audio/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestGetAudio(t *testing.T) {
	rec := &datastore.AudioRecord{FileName: "a.wav", WholeStory: "a story"}
	f := newFixture(&stubStore{record: rec}, &stubResolver{}, &vendoradapters.MockTranscriptionAdapter{}, &vendoradapters.MockEnhancementAdapter{})

	w := f.get(t, "/audios/656a1b2c3d4e5f6a7b8c9d0e")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got datastore.AudioRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.FileName != "a.wav" || got.WholeStory != "a story" {
		t.Errorf("record = %+v", got)
	}
}

func TestGetAudio_NotFound(t *testing.T) {
	f := newFixture(&stubStore{getErr: datastore.ErrAudioNotFound}, &stubResolver{}, &vendoradapters.MockTranscriptionAdapter{}, &vendoradapters.MockEnhancementAdapter{})

	w := f.get(t, "/audios/not-a-real-id")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListAudios(t *testing.T) {
	f := newFixture(
		&stubStore{records: []datastore.AudioRecord{{FileName: "a.wav"}, {FileName: "b.wav"}}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/audios")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []datastore.AudioRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want 2", len(got))
	}
}

func TestGetDiff_UnscoredRecord(t *testing.T) {
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{WholeStory: "a story"}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/audios/656a1b2c3d4e5f6a7b8c9d0e/diff")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetDiff_ScoredRecord(t *testing.T) {
	transcript := "the dog sat"
	f := newFixture(
		&stubStore{record: &datastore.AudioRecord{
			WholeStory: "the cat sat",
			Transcript: &transcript,
		}},
		&stubResolver{},
		&vendoradapters.MockTranscriptionAdapter{},
		&vendoradapters.MockEnhancementAdapter{},
	)

	w := f.get(t, "/audios/656a1b2c3d4e5f6a7b8c9d0e/diff")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp DiffResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Tokens) != 4 {
		t.Fatalf("got %d tokens, want 4: %+v", len(resp.Tokens), resp.Tokens)
	}
	if resp.Tokens[1].Text != "cat" || resp.Tokens[1].Kind != "missing" {
		t.Errorf("token[1] = %+v, want missing cat", resp.Tokens[1])
	}
	if resp.Tokens[2].Text != "dog" || resp.Tokens[2].Kind != "extra" {
		t.Errorf("token[2] = %+v, want extra dog", resp.Tokens[2])
	}
	if len(f.transcriber.Calls) != 0 {
		t.Errorf("diff endpoint hit the transcription provider")
	}
}
