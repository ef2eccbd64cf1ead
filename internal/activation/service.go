package activation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/uniuri"
)

const (
	maxBatchItems     = 10
	maxBatchCount     = 1000
	maxDistribute     = 100
	maxCodeLength     = 50
	minCodeLength     = 8
	maxMintRounds     = 5
	maxMintAttempts   = 100
	defaultCodeLength = uniuri.CodeLen
)

// Config tunes code minting and distribution.
type Config struct {
	// CodeLength is the length of minted codes, 16 when zero.
	CodeLength int
	// RedeemWindow sets the expire time of codes handed out by DistributeBatch.
	// Zero means distributed codes never expire.
	RedeemWindow time.Duration
}

// BatchItem requests count new codes of one type.
type BatchItem struct {
	Type  Type `json:"type"`
	Count int  `json:"count"`
}

// BatchGroup holds the codes minted for one type.
type BatchGroup struct {
	Type     Type     `json:"type"`
	TypeName string   `json:"type_name"`
	Codes    []string `json:"activation_codes"`
	Count    int      `json:"count"`
}

// BatchResult is the outcome of GenerateBatch.
type BatchResult struct {
	Results []BatchGroup   `json:"results"`
	Total   int            `json:"total_count"`
	Summary map[string]int `json:"summary"`
}

// View is the external representation of a code.
type View struct {
	ID            uint64     `json:"id"`
	Code          string     `json:"activation_code"`
	Type          Type       `json:"type"`
	TypeName      string     `json:"type_name"`
	Status        Status     `json:"status"`
	StatusName    string     `json:"status_name"`
	DistributedAt *time.Time `json:"distributed_at"`
	ActivatedAt   *time.Time `json:"activated_at"`
	ExpireTime    *time.Time `json:"expire_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewView converts a stored row.
func NewView(m *models.ActivationCode) View {
	t, s := Type(m.Type), Status(m.Status)

	return View{
		ID:            m.ID,
		Code:          m.Code,
		Type:          t,
		TypeName:      t.String(),
		Status:        s,
		StatusName:    s.String(),
		DistributedAt: m.DistributedAt,
		ActivatedAt:   m.ActivatedAt,
		ExpireTime:    m.ExpireTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Service drives the activation code lifecycle
// UNUSED -> DISTRIBUTED -> ACTIVATED, with INVALID reachable from every other state.
type Service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
	mint func() (string, error)
}

// NewService returns a service minting codes from crypto/rand.
func NewService(repo Repository, cfg Config) (*Service, error) {
	if cfg.CodeLength == 0 {
		cfg.CodeLength = defaultCodeLength
	}

	if cfg.CodeLength < minCodeLength || cfg.CodeLength > maxCodeLength {
		return nil, fmt.Errorf("activation code length %d outside %d..%d", cfg.CodeLength, minCodeLength, maxCodeLength)
	}

	if cfg.RedeemWindow < 0 {
		return nil, fmt.Errorf("negative redeem window %s", cfg.RedeemWindow)
	}

	gen, err := uniuri.NewGenerator(cfg.CodeLength, uniuri.CodeChars)
	if err != nil {
		return nil, err
	}

	return &Service{repo: repo, cfg: cfg, now: time.Now, mint: gen.Next}, nil
}

// WithRepository returns a copy of the service bound to repo, typically a repository
// running inside a database transaction.
func (s *Service) WithRepository(repo Repository) *Service {
	c := *s
	c.repo = repo

	return &c
}

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time { return s.now() }

// ValidateBatch checks a whole batch request before anything is minted.
func ValidateBatch(items []BatchItem) error {
	if len(items) == 0 || len(items) > maxBatchItems {
		return ErrInvalidBatch
	}

	seen := make(map[Type]struct{}, len(items))

	for _, it := range items {
		if !it.Type.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownType, it.Type)
		}

		if it.Count < 1 || it.Count > maxBatchCount {
			return fmt.Errorf("%w: %d codes of type %s, allowed 1..%d", ErrInvalidCount, it.Count, it.Type, maxBatchCount)
		}

		if _, dup := seen[it.Type]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTypeInBatch, it.Type)
		}

		seen[it.Type] = struct{}{}
	}

	return nil
}

// GenerateBatch mints and stores new unused codes for every item. Either every code
// of the batch is stored or none is.
func (s *Service) GenerateBatch(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	if err := ValidateBatch(items); err != nil {
		return nil, err
	}

	total := 0
	for _, it := range items {
		total += it.Count
	}

	codes, err := s.mintUnique(ctx, total)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ActivationCode, 0, total)
	res := &BatchResult{Total: total, Summary: make(map[string]int, len(items))}
	offset := 0

	for _, it := range items {
		group := BatchGroup{Type: it.Type, TypeName: it.Type.String(), Codes: codes[offset : offset+it.Count], Count: it.Count}
		offset += it.Count

		for _, c := range group.Codes {
			rows = append(rows, models.ActivationCode{Code: c, Type: uint8(it.Type), Status: uint8(StatusUnused)})
		}

		res.Results = append(res.Results, group)
		res.Summary[group.TypeName] = it.Count
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("store activation codes: %w", err)
	}

	for _, it := range items {
		codesMinted.WithLabelValues(it.Type.String()).Add(float64(it.Count))
	}

	log.Info().Int("total", total).Interface("summary", res.Summary).Msg("activation codes generated")

	return res, nil
}

// mintUnique returns n codes unique among themselves and against the repository.
// Only codes that collide are drawn again.
func (s *Service) mintUnique(ctx context.Context, n int) ([]string, error) {
	codes := make([]string, n)
	taken := make(map[string]struct{}, n)

	pending := make([]int, n)
	for i := range pending {
		pending[i] = i
	}

	for round := 0; len(pending) > 0; round++ {
		if round == maxMintRounds {
			return nil, ErrMintExhausted
		}

		batch := make([]string, 0, len(pending))

		for _, idx := range pending {
			c, err := s.drawFresh(taken)
			if err != nil {
				return nil, err
			}

			codes[idx] = c
			taken[c] = struct{}{}
			batch = append(batch, c)
		}

		existing, err := s.repo.ExistingCodes(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("check minted codes: %w", err)
		}

		if len(existing) == 0 {
			break
		}

		clash := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			clash[c] = struct{}{}
		}

		next := pending[:0]

		for _, idx := range pending {
			if _, ok := clash[codes[idx]]; ok {
				next = append(next, idx)
			}
		}

		log.Debug().Int("collisions", len(next)).Msg("regenerating colliding activation codes")

		pending = next
	}

	return codes, nil
}

// drawFresh returns a code not in taken. Stored collisions stay in taken so they are
// never drawn again.
func (s *Service) drawFresh(taken map[string]struct{}) (string, error) {
	for range maxMintAttempts {
		c, err := s.mint()
		if err != nil {
			return "", fmt.Errorf("mint activation code: %w", err)
		}

		if _, dup := taken[c]; !dup {
			return c, nil
		}
	}

	return "", ErrMintExhausted
}

// GetCodes returns up to count unused codes of a type without changing them.
func (s *Service) GetCodes(ctx context.Context, t Type, count int) ([]View, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}

	if count < 1 || count > maxDistribute {
		return nil, fmt.Errorf("%w: %d, allowed 1..%d", ErrInvalidCount, count, maxDistribute)
	}

	rows, err := s.repo.ListUnused(ctx, t, count)
	if err != nil {
		return nil, err
	}

	return views(rows), nil
}

// Get returns one code.
func (s *Service) Get(ctx context.Context, code string) (*View, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	v := NewView(row)

	return &v, nil
}

// Distribute hands out an unused code. A nil expireTime means the code never expires.
func (s *Service) Distribute(ctx context.Context, code string, expireTime *time.Time) (*View, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.distribute(ctx, row, expireTime)
}

func (s *Service) distribute(ctx context.Context, row *models.ActivationCode, expireTime *time.Time) (*View, error) {
	if Status(row.Status) != StatusUnused {
		return nil, stateError(Status(row.Status), StatusDistributed)
	}

	now := s.now()
	change := StatusChange{To: StatusDistributed, DistributedAt: &now, ExpireTime: expireTime}

	if err := s.transition(ctx, row, change); err != nil {
		return nil, err
	}

	row.DistributedAt = &now
	row.ExpireTime = expireTime

	v := NewView(row)

	return &v, nil
}

// DistributeBatch hands out count unused codes of a type. When a redeem window is
// configured the codes expire that long after distribution.
func (s *Service) DistributeBatch(ctx context.Context, t Type, count int) ([]View, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}

	if count < 1 || count > maxDistribute {
		return nil, fmt.Errorf("%w: %d, allowed 1..%d", ErrInvalidCount, count, maxDistribute)
	}

	rows, err := s.repo.ListUnused(ctx, t, count)
	if err != nil {
		return nil, err
	}

	if len(rows) < count {
		return nil, fmt.Errorf("%w: %d of type %s requested, %d available", ErrNoCodesAvailable, count, t, len(rows))
	}

	var expire *time.Time

	if s.cfg.RedeemWindow > 0 {
		e := s.now().Add(s.cfg.RedeemWindow)
		expire = &e
	}

	out := make([]View, 0, count)

	for i := range rows {
		v, err := s.distribute(ctx, &rows[i], expire)
		if err != nil {
			// lost to a concurrent distribution, keep going with the rest
			if errors.Is(err, ErrCodeAlreadyDistributed) || errors.Is(err, ErrCodeInvalid) ||
				errors.Is(err, ErrCodeAlreadyActivated) || errors.Is(err, ErrConcurrentUpdate) {
				continue
			}

			return out, err
		}

		out = append(out, *v)
	}

	return out, nil
}

// Register redeems a distributed code. An expired code keeps its status.
func (s *Service) Register(ctx context.Context, code string) (*View, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if Status(row.Status) != StatusDistributed {
		return nil, stateError(Status(row.Status), StatusActivated)
	}

	now := s.now()

	if row.ExpireTime != nil && now.After(*row.ExpireTime) {
		return nil, fmt.Errorf("%w at %s", ErrCodeExpired, row.ExpireTime.Format(time.RFC3339))
	}

	if err := s.transition(ctx, row, StatusChange{To: StatusActivated, ActivatedAt: &now}); err != nil {
		return nil, err
	}

	row.ActivatedAt = &now
	v := NewView(row)

	return &v, nil
}

// Invalidate retires a code. Invalidating an invalid code succeeds without change.
func (s *Service) Invalidate(ctx context.Context, code string) (*View, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if Status(row.Status) != StatusInvalid {
		if err := s.transition(ctx, row, StatusChange{To: StatusInvalid}); err != nil {
			return nil, err
		}
	}

	v := NewView(row)

	return &v, nil
}

// transition applies change if row is still in the status it was read with. When the
// row moved meanwhile the error reflects its new state.
func (s *Service) transition(ctx context.Context, row *models.ActivationCode, change StatusChange) error {
	from := Status(row.Status)

	ok, err := s.repo.Transition(ctx, row.ID, from, change)
	if err != nil {
		return fmt.Errorf("update activation code %s: %w", row.Code, err)
	}

	if !ok {
		fresh, err := s.repo.GetByCode(ctx, row.Code)
		if err != nil {
			return err
		}

		if Status(fresh.Status) == change.To && change.To == StatusInvalid {
			*row = *fresh
			return nil
		}

		return stateError(Status(fresh.Status), change.To)
	}

	row.Status = uint8(change.To)
	row.UpdatedAt = s.now()

	codeTransitions.WithLabelValues(from.String(), change.To.String()).Inc()

	log.Debug().
		Str("code", row.Code).
		Str("from", from.String()).
		Str("to", change.To.String()).
		Msg("activation code transitioned")

	return nil
}

// stateError explains why a code in status cur cannot move to target.
// ErrConcurrentUpdate covers pairs that only a concurrent writer can produce.
func stateError(cur, target Status) error {
	switch cur {
	case StatusInvalid:
		return ErrCodeInvalid
	case StatusActivated:
		return ErrCodeAlreadyActivated
	case StatusDistributed:
		if target == StatusDistributed {
			return ErrCodeAlreadyDistributed
		}
	case StatusUnused:
		if target == StatusActivated {
			return ErrCodeNotDistributed
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownStatus, cur)
	}

	return ErrConcurrentUpdate
}

func views(rows []models.ActivationCode) []View {
	out := make([]View, 0, len(rows))
	for i := range rows {
		out = append(out, NewView(&rows[i]))
	}

	return out
}
