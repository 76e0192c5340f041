// Command seed loads sample users and guidelines into the configured database.
// Records are keyed deterministically, so re-running skips existing entries.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/internal/config"
	"github.com/JaimeStill/guidesync/internal/guidelines"
	"github.com/JaimeStill/guidesync/internal/users"
	"github.com/JaimeStill/guidesync/pkg/database"
)

var seedNamespace = uuid.MustParse("6f1c8f0e-3b7a-4d0c-9a56-0d1f2c3b4a59")

type sampleUser struct {
	email, password, name, trust string
	role                         auth.Role
}

var sampleUsers = []sampleUser{
	{"admin@guidelinesync.com", "admin123", "System Administrator", "System", auth.RoleAdmin},
	{"clinician@stgeorges.nhs.uk", "clinician123", "Dr. Sarah Johnson", "St George's Hospital", auth.RoleClinician},
}

var sampleGuidelines = []guidelines.Guideline{
	{
		TrustName:   "St George's Hospital",
		Title:       "Acute Myocardial Infarction Management",
		Description: "Comprehensive guidelines for the management of acute myocardial infarction in the emergency department and cardiac care unit.",
		Speciality:  guidelines.Cardiology,
		Content: guidelines.Inline{Text: `# Acute Myocardial Infarction Management

## Initial Assessment
- Obtain 12-lead ECG within 10 minutes of arrival
- Check vital signs and oxygen saturation
- Assess for contraindications to thrombolysis

## Treatment Protocol
1. Aspirin 300mg chewed, clopidogrel 600mg loading dose, atorvastatin 80mg
2. Morphine 2.5-5mg IV PRN; GTN sublingual if systolic BP >90mmHg
3. Primary PCI preferred if available within 120 minutes`},
		Tags: []string{"emergency", "cardiology", "acute care", "STEMI", "NSTEMI"},
	},
	{
		TrustName:   "Royal London Hospital",
		Title:       "Pediatric Asthma Management",
		Description: "Evidence-based guidelines for the assessment and management of acute asthma in children.",
		Speciality:  guidelines.Pediatrics,
		Content: guidelines.Inline{Text: `# Pediatric Asthma Management

## Severity Assessment
- Mild: able to talk in sentences, peak flow >75% predicted
- Moderate: able to talk in phrases, peak flow 50-75% predicted
- Severe: unable to complete sentences, peak flow <50% predicted

## Treatment
- Salbutamol inhaler 2-10 puffs via spacer, repeat every 20 minutes for first hour
- Prednisolone 1-2mg/kg (max 40mg) for 3 days`},
		Tags: []string{"pediatrics", "respiratory", "emergency", "asthma"},
	},
	{
		TrustName:   "Manchester Royal Infirmary",
		Title:       "Stroke Thrombolysis Protocol",
		Description: "Time-critical protocol for acute stroke thrombolysis assessment and treatment.",
		Speciality:  guidelines.Neurology,
		Content: guidelines.Inline{Text: `# Stroke Thrombolysis Protocol

## Time Targets
- Door to CT: 25 minutes
- Door to needle: 60 minutes
- Onset to treatment: <4.5 hours

## Treatment
- Weight-based dosing: 0.9mg/kg (max 90mg), 10% as bolus over 1 minute
- Neurological observations every 15 minutes for 2 hours`},
		Tags: []string{"stroke", "neurology", "emergency", "thrombolysis"},
	},
}

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Overall seed timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("command", "seed")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		log.Fatal("database init failed: ", err)
	}
	conn := db.Connection()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		log.Fatal("database unreachable: ", err)
	}

	adminID, err := seedUsers(ctx, users.NewRepository(conn), logger)
	if err != nil {
		log.Fatal(err)
	}

	if err := seedGuidelines(ctx, guidelines.NewRepository(conn), adminID, logger); err != nil {
		log.Fatal(err)
	}

	logger.Info("seed complete")
}

func seedUsers(ctx context.Context, store users.Store, logger *slog.Logger) (string, error) {
	var adminID string
	now := time.Now().UTC()

	for _, su := range sampleUsers {
		hash, err := users.HashPassword(su.password)
		if err != nil {
			return "", err
		}

		trust := su.trust
		u := users.User{
			ID:           uuid.NewSHA1(seedNamespace, []byte(su.email)),
			Email:        su.email,
			Name:         su.name,
			PasswordHash: hash,
			Role:         su.role,
			TrustName:    &trust,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if su.role == auth.RoleAdmin {
			adminID = u.ID.String()
		}

		switch err := store.Insert(ctx, u); {
		case errors.Is(err, users.ErrDuplicate):
			logger.Info("user exists, skipping", "email", u.Email)
		case err != nil:
			return "", err
		default:
			logger.Info("user created", "email", u.Email, "role", u.Role)
		}
	}

	return adminID, nil
}

func seedGuidelines(ctx context.Context, store guidelines.Store, createdBy string, logger *slog.Logger) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	for _, g := range sampleGuidelines {
		g.ID = uuid.NewSHA1(seedNamespace, []byte(g.Title))
		g.IsActive = true
		g.CreatedBy = createdBy
		g.CreatedAt = now
		g.UpdatedAt = now

		switch err := store.Insert(ctx, g); {
		case errors.Is(err, guidelines.ErrDuplicate):
			logger.Info("guideline exists, skipping", "title", g.Title)
		case err != nil:
			return err
		default:
			logger.Info("guideline created", "title", g.Title, "trust", g.TrustName)
		}
	}

	return nil
}
