package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Aryaveer-14/civic-mind/models"
)

// Postgres is the durable backend. Per-row atomicity is delegated to the
// database; the authority upsert runs in a transaction to keep the
// read-merge-write step consistent.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres connects to the database at connString and runs migrations.
func NewPostgres(connString string) (*Postgres, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(connString), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Feedback{},
		&models.Suggestion{},
		&models.AuthorityRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Successfully connected to database")

	return &Postgres{db: db}, nil
}

func (p *Postgres) Name() string { return "postgres" }

/* ---- users ---- */

func (p *Postgres) CreateUser(user *models.User) error {
	return p.db.Create(user).Error
}

func (p *Postgres) UserByID(id string) (*models.User, error) {
	var user models.User
	err := p.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) UserByEmail(email string) (*models.User, error) {
	var user models.User
	err := p.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (p *Postgres) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

/* ---- complaints ---- */

func (p *Postgres) CreateComplaint(complaint *models.Complaint) error {
	return p.db.Create(complaint).Error
}

func (p *Postgres) ComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := p.db.Where("id = ?", id).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (p *Postgres) ComplaintsByUser(userID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := p.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&complaints).Error
	return complaints, err
}

func (p *Postgres) SimilarComplaints(issueType, area, excludeUserID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := p.db.Where("issue_type = ? AND area = ? AND user_id <> ?", issueType, area, excludeUserID).
		Order("created_at desc").
		Limit(SimilarLimit).
		Find(&complaints).Error
	return complaints, err
}

/* ---- feedback ---- */

func (p *Postgres) CreateFeedback(feedback *models.Feedback) error {
	return p.db.Create(feedback).Error
}

func (p *Postgres) AllFeedback() ([]models.Feedback, error) {
	var rows []models.Feedback
	err := p.db.Find(&rows).Error
	return rows, err
}

/* ---- suggestions ---- */

func (p *Postgres) CreateSuggestion(suggestion *models.Suggestion) error {
	return p.db.Create(suggestion).Error
}

func (p *Postgres) SuggestionByID(id string) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	err := p.db.Where("id = ?", id).First(&suggestion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (p *Postgres) UpdateSuggestion(suggestion *models.Suggestion) error {
	return p.db.Save(suggestion).Error
}

func (p *Postgres) SuggestionsByComplaint(complaintID string) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	err := p.db.Where("complaint_id = ?", complaintID).
		Order("helpful_count desc").
		Find(&suggestions).Error
	return suggestions, err
}

/* ---- authorities ---- */

func (p *Postgres) UpsertAuthority(record *models.AuthorityRecord) (string, error) {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var existing models.AuthorityRecord
		err := tx.Where("id = ?", record.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}
		mergeAuthority(&existing, record)
		*record = existing
		return tx.Save(&existing).Error
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (p *Postgres) FindAuthority(nameNormalized, areaNormalized string) (*models.AuthorityRecord, error) {
	// Exact name match first, alias match second; area constrains both when
	// it is non-empty.
	var record models.AuthorityRecord
	query := p.db.Where("name_normalized = ?", nameNormalized)
	if areaNormalized != "" {
		query = query.Where("area_normalized = ?", areaNormalized)
	}
	err := query.First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	aliasQuery := p.db.Where("? = ANY(aliases_normalized)", nameNormalized)
	if areaNormalized != "" {
		aliasQuery = aliasQuery.Where("area_normalized = ?", areaNormalized)
	}
	err = aliasQuery.First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
