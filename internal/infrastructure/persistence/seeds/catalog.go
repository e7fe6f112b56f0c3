// Package seeds loads catalog data (plans, payment methods and, for local
// environments, academies and members) from YAML files.
package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// Catalog is the root of a seed file.
//
//	platform:
//	  plans:
//	    - {name: Pro, price: "300.00", recurrence_days: 30}
//	academies:
//	  - id: 7
//	    name: Box Centro
//	    plans:
//	      - {name: Monthly, price: "100.00", recurrence_days: 30}
//	    payment_methods:
//	      - {name: Pix, discount_percent: "5"}
type Catalog struct {
	Platform  ScopeCatalog     `yaml:"platform"`
	Academies []AcademyCatalog `yaml:"academies"`
}

type ScopeCatalog struct {
	Plans          []PlanSeed          `yaml:"plans"`
	PaymentMethods []PaymentMethodSeed `yaml:"payment_methods"`
}

type AcademyCatalog struct {
	ID           uint   `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	ScopeCatalog `yaml:",inline"`
	Members      []MemberSeed `yaml:"members"`
}

type PlanSeed struct {
	Name           string `yaml:"name"`
	Price          string `yaml:"price"`
	RecurrenceDays int    `yaml:"recurrence_days"`
	Quota          *int   `yaml:"quota"`
	Category       string `yaml:"category"`
}

type PaymentMethodSeed struct {
	Name            string `yaml:"name"`
	DiscountPercent string `yaml:"discount_percent"`
}

type MemberSeed struct {
	ID    uint   `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// LoadCatalog reads and strictly decodes a seed file; unknown keys are errors.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &catalog, nil
}

// SeedResult counts what Apply created; existing entries are skipped.
type SeedResult struct {
	Plans          int
	PaymentMethods int
	Academies      int
	Members        int
}

// Seeder applies catalogs through the regular use cases so seeded data obeys
// the same validation as data entered through the API.
type Seeder struct {
	db         *gorm.DB
	plans      billing.PlanRepository
	methods    billing.PaymentMethodRepository
	createPlan *usecases.CreatePlanUseCase
	catalog    *usecases.PaymentMethodCatalog
	logger     logger.Interface
}

func NewSeeder(db *gorm.DB, plans billing.PlanRepository, methods billing.PaymentMethodRepository, clock biztime.Clock, log logger.Interface) *Seeder {
	return &Seeder{
		db:         db,
		plans:      plans,
		methods:    methods,
		createPlan: usecases.NewCreatePlanUseCase(plans, clock, log),
		catalog:    usecases.NewPaymentMethodCatalog(methods, clock, log),
		logger:     log,
	}
}

// Apply is idempotent: plans and methods are matched by name within their
// scope, academies and members by ID.
func (s *Seeder) Apply(ctx context.Context, catalog *Catalog) (*SeedResult, error) {
	result := &SeedResult{}

	if err := s.seedScope(ctx, vo.PlatformScope(), catalog.Platform, result); err != nil {
		return result, fmt.Errorf("platform: %w", err)
	}

	for _, academy := range catalog.Academies {
		if academy.ID == 0 {
			return result, fmt.Errorf("academy %q: id is required", academy.Name)
		}
		created, err := s.upsertAcademy(ctx, academy)
		if err != nil {
			return result, fmt.Errorf("academy %d: %w", academy.ID, err)
		}
		if created {
			result.Academies++
		}
		for _, member := range academy.Members {
			created, err := s.upsertMember(ctx, academy.ID, member)
			if err != nil {
				return result, fmt.Errorf("academy %d member %d: %w", academy.ID, member.ID, err)
			}
			if created {
				result.Members++
			}
		}
		if err := s.seedScope(ctx, vo.AcademyScope(academy.ID), academy.ScopeCatalog, result); err != nil {
			return result, fmt.Errorf("academy %d: %w", academy.ID, err)
		}
	}

	s.logger.Infow("catalog seeded",
		"plans", result.Plans,
		"payment_methods", result.PaymentMethods,
		"academies", result.Academies,
		"members", result.Members,
	)
	return result, nil
}

func (s *Seeder) seedScope(ctx context.Context, scope vo.Scope, seed ScopeCatalog, result *SeedResult) error {
	existingPlans, _, err := s.plans.List(ctx, scope, billing.PlanFilter{})
	if err != nil {
		return err
	}
	planNames := make(map[string]bool, len(existingPlans))
	for _, p := range existingPlans {
		planNames[strings.ToLower(p.Name())] = true
	}

	for _, p := range seed.Plans {
		if planNames[strings.ToLower(strings.TrimSpace(p.Name))] {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("plan %q: invalid price %q", p.Name, p.Price)
		}
		if _, err := s.createPlan.Execute(ctx, usecases.CreatePlanCommand{
			Scope: scope,
			PlanInput: usecases.PlanInput{
				Name:           p.Name,
				Price:          price,
				RecurrenceDays: p.RecurrenceDays,
				Quota:          p.Quota,
				Category:       p.Category,
			},
		}); err != nil {
			return fmt.Errorf("plan %q: %w", p.Name, err)
		}
		planNames[strings.ToLower(strings.TrimSpace(p.Name))] = true
		result.Plans++
	}

	existingMethods, err := s.methods.List(ctx, scope.TenantID, false)
	if err != nil {
		return err
	}
	methodNames := make(map[string]bool, len(existingMethods))
	for _, m := range existingMethods {
		methodNames[strings.ToLower(m.Name())] = true
	}

	for _, m := range seed.PaymentMethods {
		if methodNames[strings.ToLower(strings.TrimSpace(m.Name))] {
			continue
		}
		discount := decimal.Zero
		if m.DiscountPercent != "" {
			if discount, err = decimal.NewFromString(m.DiscountPercent); err != nil {
				return fmt.Errorf("payment method %q: invalid discount %q", m.Name, m.DiscountPercent)
			}
		}
		if _, err := s.catalog.Create(ctx, usecases.CreatePaymentMethodCommand{
			Scope:           scope,
			Name:            m.Name,
			DiscountPercent: discount,
		}); err != nil {
			return fmt.Errorf("payment method %q: %w", m.Name, err)
		}
		methodNames[strings.ToLower(strings.TrimSpace(m.Name))] = true
		result.PaymentMethods++
	}
	return nil
}

func (s *Seeder) upsertAcademy(ctx context.Context, seed AcademyCatalog) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AcademyModel{
		ID:    seed.ID,
		Name:  seed.Name,
		Email: seed.Email,
	})
	return res.RowsAffected > 0, res.Error
}

func (s *Seeder) upsertMember(ctx context.Context, academyID uint, seed MemberSeed) (bool, error) {
	if seed.ID == 0 {
		return false, fmt.Errorf("member %q: id is required", seed.Name)
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.MemberModel{
		ID:        seed.ID,
		AcademyID: academyID,
		Name:      seed.Name,
		Email:     seed.Email,
	})
	return res.RowsAffected > 0, res.Error
}
