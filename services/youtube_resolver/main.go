// YouTube Resolver Service
//
// HTTP front end for the voice-command resolution engine. Commands are queued
// as jobs and executed by a single worker because the browser session is a
// shared resource that cannot be driven concurrently.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"jarvis/browser"
	"jarvis/episodes"
	"jarvis/eventbus"
	"jarvis/ocr"
	"jarvis/speech"
	"jarvis/youtube"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ResolveRequest is an incoming command request.
type ResolveRequest struct {
	Command string `json:"command"`
}

// ResolveJob tracks one queued command through execution.
type ResolveJob struct {
	ID          string           `json:"id"`
	Command     string           `json:"command"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Outcome     *youtube.Outcome `json:"outcome,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JobStore manages resolve jobs in memory.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*ResolveJob
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*ResolveJob)}
}

func (s *JobStore) Create(command string) *ResolveJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &ResolveJob{
		ID:        uuid.New().String(),
		Command:   command,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	return job
}

func (s *JobStore) Get(id string) (ResolveJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return ResolveJob{}, false
	}
	return *job, true
}

func (s *JobStore) UpdateStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	now := time.Now()
	switch status {
	case JobStatusRunning:
		job.StartedAt = &now
	case JobStatusCompleted, JobStatusFailed:
		job.CompletedAt = &now
	}
}

func (s *JobStore) Complete(id string, out youtube.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.CompletedAt = &now
	job.Outcome = &out
	if out.Kind == youtube.OutcomeSessionLost {
		job.Status = JobStatusFailed
		job.Error = out.Message
	} else {
		job.Status = JobStatusCompleted
	}
}

func (s *JobStore) CleanupOld(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, job := range s.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

// ResolverService owns the queue and the single worker driving the browser.
type ResolverService struct {
	store    *JobStore
	resolver *youtube.Resolver
	eps      *episodes.Recorder
	bus      *eventbus.NATSBus
	jobQueue chan string
}

func NewResolverService(resolver *youtube.Resolver, eps *episodes.Recorder, bus *eventbus.NATSBus) *ResolverService {
	return &ResolverService{
		store:    NewJobStore(),
		resolver: resolver,
		eps:      eps,
		bus:      bus,
		jobQueue: make(chan string, 100),
	}
}

func (s *ResolverService) Start() {
	go s.worker()
	go s.cleanupWorker()
	log.Printf("✅ Resolver worker started")
}

func (s *ResolverService) worker() {
	for jobID := range s.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ Worker PANIC on job %s: %v", jobID, r)
					s.store.UpdateStatus(jobID, JobStatusFailed)
				}
			}()

			job, ok := s.store.Get(jobID)
			if !ok {
				log.Printf("⚠️ Job %s not found", jobID)
				return
			}

			log.Printf("🔧 Processing job %s: %q", jobID, job.Command)
			s.store.UpdateStatus(jobID, JobStatusRunning)

			out := s.resolver.ExecuteCommand(job.Command)
			s.store.Complete(jobID, out)
			s.publishOutcome(job.Command, out)
			log.Printf("✅ Job %s finished: %s", jobID, out.Kind)
		}()
	}
}

func (s *ResolverService) cleanupWorker() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.store.CleanupOld(30 * time.Minute)
	}
}

func (s *ResolverService) publishOutcome(command string, out youtube.Outcome) {
	if s.bus == nil {
		return
	}
	evt := eventbus.NewEvent("youtube-resolver", eventbus.TypeOutcome, eventbus.EventPayload{
		Query:   command,
		Outcome: out.Kind,
		Metadata: map[string]interface{}{
			"title":   out.Title,
			"tier":    string(out.Tier),
			"score":   out.Score,
			"scrolls": out.Scrolls,
		},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Printf("⚠️ Outcome publish failed: %v", err)
	}
}

func (s *ResolverService) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "youtube-resolver",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *ResolverService) handleStart(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		http.Error(w, "command is required", http.StatusBadRequest)
		return
	}

	job := s.store.Create(req.Command)
	select {
	case s.jobQueue <- job.ID:
	default:
		http.Error(w, "queue full", http.StatusServiceUnavailable)
		return
	}

	log.Printf("📥 Queued job %s: %q", job.ID, req.Command)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": job.ID, "status": job.Status})
}

func (s *ResolverService) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.store.Get(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job)
}

func (s *ResolverService) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if s.eps == nil {
		http.Error(w, "episode recording disabled", http.StatusNotFound)
		return
	}
	n := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			n = parsed
		}
	}
	eps, err := s.eps.Recent(n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(eps)
}

func main() {
	_ = godotenv.Load()

	sess, err := browser.Attach(browser.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to attach browser session: %v", err)
	}
	defer sess.Close()

	if cur, err := sess.CurrentURL(); err == nil && !strings.Contains(cur, "youtube.com") {
		if err := sess.Navigate("https://www.youtube.com/"); err != nil {
			log.Printf("⚠️ Could not open YouTube: %v", err)
		}
	}

	var langs []string
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		langs = strings.Split(v, ",")
	}
	var rec ocr.Recognizer = ocr.NewTesseract(langs...)

	var bus *eventbus.NATSBus
	var ann speech.Announcer = speech.LogAnnouncer{}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		bus, err = eventbus.NewNATSBus(eventbus.NATSConfig{URL: natsURL})
		if err != nil {
			log.Printf("⚠️ NATS unavailable, speaking to the log instead: %v", err)
		} else {
			defer bus.Close()
			ann = speech.NewBusAnnouncer(bus, "youtube-resolver")
			log.Printf("✅ Connected to NATS at %s", natsURL)
		}
	}

	var eps *episodes.Recorder
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		eps = episodes.NewRecorder(redisAddr, "jarvis:episodes")
		defer eps.Close()
		log.Printf("✅ Episode recording to Redis at %s", redisAddr)
	}

	resolver := youtube.NewResolver(sess, rec, ann, eps)
	service := NewResolverService(resolver, eps, bus)
	service.Start()

	r := mux.NewRouter()
	r.HandleFunc("/health", service.handleHealth).Methods("GET")
	r.HandleFunc("/resolve/start", service.handleStart).Methods("POST")
	r.HandleFunc("/resolve/job/{id}", service.handleGetJob).Methods("GET")
	r.HandleFunc("/episodes/recent", service.handleEpisodes).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8091"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	log.Printf("🚀 YouTube Resolver Service starting on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
