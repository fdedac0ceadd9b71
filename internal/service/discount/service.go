package discount

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// DateLayout is the day-first layout accepted for start and end dates, alongside RFC 3339.
const DateLayout = "02/01/2006 15:04"

var (
	ErrCodeRequired   = domain.Invalid("discount code is required")
	ErrInvalidType    = domain.Invalid("discount type must be percent or amount")
	ErrInvalidValue   = domain.Invalid("discount value must be greater than zero")
	ErrPercentTooHigh = domain.Invalid("percent discount cannot exceed 100")
	ErrInvalidStart   = domain.Invalid("invalid discount start date")
	ErrInvalidEnd     = domain.Invalid("invalid discount end date")
	ErrEndBeforeStart = domain.Rule("discount end date must be after the start date")
	ErrStartInPast    = domain.Rule("discount start date must be after today")
	ErrCodeExists     = domain.Rule("discount code already exists")
	ErrNotFound       = domain.NotFound("discount not found")
)

type discountRepo interface {
	List(ctx context.Context) ([]domain.Discount, error)
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
	CodeTaken(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, d domain.Discount) (*domain.Discount, error)
	Update(ctx context.Context, d domain.Discount) (*domain.Discount, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo   discountRepo
	logger *log.Logger
	now    func() time.Time
}

func New(repo discountRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Input is an admin discount form. Start and End accept DateLayout or RFC 3339.
type Input struct {
	ID    string          `json:"discountId,omitempty"`
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
	Start string          `json:"start"`
	End   string          `json:"end"`
}

func (s *Service) List(ctx context.Context) ([]domain.Discount, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Discount, error) {
	d, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Discount, error) {
	d, err := s.validate(ctx, in, "")
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, d)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrCodeExists
		}
		s.logger.Printf("discount service: create code=%s error=%v", d.Code, err)
		return nil, domain.Persistence("error saving discount, please try again", err)
	}
	s.logger.Printf("discount service: created id=%s code=%s", created.ID, created.Code)
	return created, nil
}

func (s *Service) Update(ctx context.Context, in Input) (*domain.Discount, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrNotFound
	}
	d, err := s.validate(ctx, in, in.ID)
	if err != nil {
		return nil, err
	}
	d.ID = in.ID
	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, ErrCodeExists
		}
		s.logger.Printf("discount service: update id=%s error=%v", in.ID, err)
		return nil, domain.Persistence("error saving discount, please try again", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return domain.Persistence("error deleting discount, please try again", err)
	}
	return nil
}

// validate checks shape first, then the date window, then code uniqueness excluding excludeID.
func (s *Service) validate(ctx context.Context, in Input, excludeID string) (domain.Discount, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return domain.Discount{}, ErrCodeRequired
	}
	typ := strings.ToLower(strings.TrimSpace(in.Type))
	if typ != domain.DiscountPercent && typ != domain.DiscountAmount {
		return domain.Discount{}, ErrInvalidType
	}
	if !in.Value.IsPositive() {
		return domain.Discount{}, ErrInvalidValue
	}
	if typ == domain.DiscountPercent && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Discount{}, ErrPercentTooHigh
	}
	start, err := ParseDate(in.Start)
	if err != nil {
		return domain.Discount{}, ErrInvalidStart
	}
	end, err := ParseDate(in.End)
	if err != nil {
		return domain.Discount{}, ErrInvalidEnd
	}
	if !end.After(start) {
		return domain.Discount{}, ErrEndBeforeStart
	}
	if !start.After(s.now()) {
		return domain.Discount{}, ErrStartInPast
	}

	taken, err := s.repo.CodeTaken(ctx, code, excludeID)
	if err != nil {
		return domain.Discount{}, domain.Persistence("error saving discount, please try again", err)
	}
	if taken {
		return domain.Discount{}, ErrCodeExists
	}
	return domain.Discount{Code: code, Type: typ, Value: in.Value.Round(2), Start: start, End: end}, nil
}

// ParseDate accepts DateLayout in local time or RFC 3339.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(DateLayout, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
