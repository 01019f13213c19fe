package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"signflow/internal/domain/entity"
)

type fakeTxKey struct{}

// fakeStore is an in-memory repository set. Transactions are serialized and
// rolled back from a snapshot on error.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	requests  map[string]*entity.SignatureRequest
	signers   map[string]*entity.SignerRecord
	documents map[string]*entity.Document
	claims    map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  map[string]*entity.SignatureRequest{},
		signers:   map[string]*entity.SignerRecord{},
		documents: map[string]*entity.Document{},
		claims:    map[string]time.Time{},
	}
}

type snapshot struct {
	requests  map[string]entity.SignatureRequest
	signers   map[string]entity.SignerRecord
	documents map[string]entity.Document
	claims    map[string]time.Time
}

func (s *fakeStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		requests:  make(map[string]entity.SignatureRequest, len(s.requests)),
		signers:   make(map[string]entity.SignerRecord, len(s.signers)),
		documents: make(map[string]entity.Document, len(s.documents)),
		claims:    make(map[string]time.Time, len(s.claims)),
	}
	for k, v := range s.claims {
		snap.claims[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = *v
	}
	for k, v := range s.signers {
		snap.signers[k] = *v
	}
	for k, v := range s.documents {
		snap.documents[k] = *v
	}
	return snap
}

func (s *fakeStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = map[string]*entity.SignatureRequest{}
	s.signers = map[string]*entity.SignerRecord{}
	s.documents = map[string]*entity.Document{}
	s.claims = snap.claims
	for k, v := range snap.requests {
		v := v
		s.requests[k] = &v
	}
	for k, v := range snap.signers {
		v := v
		s.signers[k] = &v
	}
	for k, v := range snap.documents {
		v := v
		s.documents[k] = &v
	}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lockOutsideTx serializes a write made outside a transaction with running transactions
func (s *fakeStore) lockOutsideTx(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *fakeStore) CreateRequest(ctx context.Context, req *entity.SignatureRequest) error {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	cp.Signers = nil
	s.requests[req.ID] = &cp
	return nil
}

func (s *fakeStore) CreateSigners(ctx context.Context, signers []entity.SignerRecord) error {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range signers {
		rec := rec
		s.signers[rec.ID] = &rec
	}
	return nil
}

func (s *fakeStore) GetRequest(_ context.Context, tenantID, requestID string) (*entity.SignatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.TenantID != tenantID {
		return nil, entity.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *fakeStore) GetRequestByID(_ context.Context, requestID string) (*entity.SignatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, entity.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *fakeStore) GetRequestForUpdate(ctx context.Context, requestID string) (*entity.SignatureRequest, error) {
	if ctx.Value(fakeTxKey{}) == nil {
		return nil, errors.New("GetRequestForUpdate called outside a transaction")
	}
	return s.GetRequestByID(ctx, requestID)
}

func (s *fakeStore) ListRequests(_ context.Context, tenantID string, filter entity.RequestFilter) ([]entity.SignatureRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.SignatureRequest
	for _, req := range s.requests {
		if req.TenantID != tenantID {
			continue
		}
		if filter.State != "" && req.State != filter.State {
			continue
		}
		if filter.DocumentID != "" && req.DocumentID != filter.DocumentID {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Offset >= len(out) {
		return []entity.SignatureRequest{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *fakeStore) GetSignerRecord(_ context.Context, signerRecordID string) (*entity.SignerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.signers[signerRecordID]
	if !ok {
		return nil, entity.ErrSignerNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) listSigners(requestID string) []entity.SignerRecord {
	var out []entity.SignerRecord
	for _, rec := range s.signers {
		if rec.RequestID == requestID {
			out = append(out, *rec)
		}
	}
	sortSigners(out)
	return out
}

func (s *fakeStore) ListSignerRecords(_ context.Context, requestID string) ([]entity.SignerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listSigners(requestID), nil
}

func (s *fakeStore) ListSignerRecordsByRequests(_ context.Context, requestIDs []string) (map[string][]entity.SignerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]entity.SignerRecord, len(requestIDs))
	for _, id := range requestIDs {
		out[id] = s.listSigners(id)
	}
	return out, nil
}

func (s *fakeStore) UpdateSignerSigned(ctx context.Context, signerRecordID string, signedAt time.Time, captured entity.CapturedData, certificateHash string) (bool, error) {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.signers[signerRecordID]
	if !ok || rec.Signed {
		return false, nil
	}
	rec.Signed = true
	rec.SignedAt = &signedAt
	rec.CapturedData = &captured
	rec.CertificateHash = certificateHash
	return true, nil
}

func (s *fakeStore) UpdateRequestState(ctx context.Context, requestID string, from []entity.RequestState, to entity.RequestState, completedAt *time.Time) (bool, error) {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return false, nil
	}
	for _, st := range from {
		if req.State == st {
			req.State = to
			if completedAt != nil {
				at := *completedAt
				req.CompletedAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) SetSignedArtifactKey(ctx context.Context, requestID, key string) (bool, error) {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.SignedArtifactKey != "" {
		return false, nil
	}
	req.SignedArtifactKey = key
	delete(s.claims, requestID)
	return true, nil
}

func (s *fakeStore) ClaimArtifact(ctx context.Context, requestID string, claimedAt, staleBefore time.Time) (bool, error) {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.SignedArtifactKey != "" {
		return false, nil
	}
	if held, ok := s.claims[requestID]; ok && !held.Before(staleBefore) {
		return false, nil
	}
	s.claims[requestID] = claimedAt
	return true, nil
}

func (s *fakeStore) ReleaseArtifactClaim(ctx context.Context, requestID string, claimedAt time.Time) error {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.claims[requestID]; ok && held.Equal(claimedAt) {
		delete(s.claims, requestID)
	}
	return nil
}

func (s *fakeStore) claim(requestID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.claims[requestID]
	return at, ok
}

func (s *fakeStore) setClaim(requestID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[requestID] = at
}

func (s *fakeStore) GetDocument(_ context.Context, documentID string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *fakeStore) MarkDocumentRequiresSignature(ctx context.Context, documentID, hash string) error {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	doc.RequiresSignature = true
	doc.SignatureHash = hash
	return nil
}

func (s *fakeStore) MarkDocumentSigned(ctx context.Context, documentID string) error {
	defer s.lockOutsideTx(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	doc.Signed = true
	return nil
}

func (s *fakeStore) request(id string) entity.SignatureRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.requests[id]
}

func (s *fakeStore) signer(id string) entity.SignerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.signers[id]
}

func (s *fakeStore) document(id string) entity.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.documents[id]
}

type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	downloads   int
	downloadErr error
	uploadErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) put(key string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), content...)
}

func (f *fakeStorage) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	return b, ok
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return append([]byte(nil), b...), nil
}

func (f *fakeStorage) Upload(_ context.Context, content []byte, key, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.objects[key] = append([]byte(nil), content...)
	return nil
}

type fakeStamper struct {
	mu    sync.Mutex
	calls int
	jobs  []entity.StampJob
	err   error

	// when set, Stamp signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeStamper) Stamp(_ context.Context, job *entity.StampJob) ([]byte, error) {
	if f.release != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.jobs = append(f.jobs, *job)
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("stamped:"), job.Content...), nil
}

func (f *fakeStamper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStamper) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entity.SignatureEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event entity.SignatureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

// fakeCache honours generations the same way the Redis cache does
type fakeCache struct {
	mu          sync.Mutex
	statuses    map[string]entity.RequestStatus
	generations map[string]int64
	invalidated int
	skipped     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		statuses:    map[string]entity.RequestStatus{},
		generations: map[string]int64{},
	}
}

func (f *fakeCache) GetStatus(_ context.Context, requestID string) (*entity.RequestStatus, int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen := f.generations[requestID]
	st, ok := f.statuses[requestID]
	if !ok {
		return nil, gen, false
	}
	return &st, gen, true
}

func (f *fakeCache) SetStatus(_ context.Context, status *entity.RequestStatus, generation int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation < 0 || f.generations[status.RequestID] != generation {
		f.skipped++
		return
	}
	f.statuses[status.RequestID] = *status
}

func (f *fakeCache) Invalidate(ctx context.Context, requestID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		// a real client fails here; the entry would survive
		return
	}
	f.invalidated++
	f.generations[requestID]++
	delete(f.statuses, requestID)
}
