package storage

import (
	"context"
	"errors"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// projectRecord 项目表，分镜等嵌套结构以JSON列存储
type projectRecord struct {
	Id             string              `gorm:"primaryKey;type:varchar(64)"`
	Name           string              `gorm:"type:varchar(255)"`
	CreationMode   string              `gorm:"type:varchar(32)"`
	CurrentStep    int                 `gorm:"not null;default:1"`
	StyleSettings  types.StyleSettings `gorm:"serializer:json;type:json"`
	ScriptContent  string              `gorm:"type:longtext"`
	Segments       []types.Segment     `gorm:"serializer:json;type:json"`
	GenerationMode string              `gorm:"type:varchar(32)"`
	AspectRatio    string              `gorm:"type:varchar(16)"`
	VisualBible    *types.VisualBible  `gorm:"serializer:json;type:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (projectRecord) TableName() string {
	return "project"
}

func toRecord(p *types.Project) *projectRecord {
	return &projectRecord{
		Id:             p.Id,
		Name:           p.Name,
		CreationMode:   p.CreationMode,
		CurrentStep:    p.CurrentStep,
		StyleSettings:  p.StyleSettings,
		ScriptContent:  p.ScriptContent,
		Segments:       p.Segments,
		GenerationMode: string(p.GenerationMode),
		AspectRatio:    p.AspectRatio,
		VisualBible:    p.VisualBible,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *projectRecord) toProject() *types.Project {
	return &types.Project{
		Id:             r.Id,
		Name:           r.Name,
		CreationMode:   r.CreationMode,
		CurrentStep:    r.CurrentStep,
		StyleSettings:  r.StyleSettings,
		ScriptContent:  r.ScriptContent,
		Segments:       r.Segments,
		GenerationMode: types.GenerationMode(r.GenerationMode),
		AspectRatio:    r.AspectRatio,
		VisualBible:    r.VisualBible,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// GormProjectStore 基于MySQL的项目存储
type GormProjectStore struct {
	db *gorm.DB
}

func openMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// NewGormProjectStore 连接数据库并自动迁移项目表
func NewGormProjectStore(dsn string) (*GormProjectStore, error) {
	db, err := openMySQL(dsn)
	if err != nil {
		return nil, err
	}
	if err = db.AutoMigrate(&projectRecord{}); err != nil {
		return nil, fmt.Errorf("迁移项目表失败: %w", err)
	}
	return &GormProjectStore{db: db}, nil
}

// PingMySQL 只检查数据库能否连通，不建表，连接用完即关闭
func PingMySQL(ctx context.Context, dsn string) error {
	db, err := openMySQL(dsn)
	if err != nil {
		return err
	}
	store := &GormProjectStore{db: db}
	defer store.Close()
	return store.Ping(ctx)
}

// Ping 检查数据库连通性
func (s *GormProjectStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormProjectStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormProjectStore) Create(ctx context.Context, project *types.Project) error {
	record := toRecord(project)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.NewConflictError("项目已存在")
		}
		return fmt.Errorf("create project err: %w", err)
	}
	project.CreatedAt, project.UpdatedAt = record.CreatedAt, record.UpdatedAt
	return nil
}

func (s *GormProjectStore) Get(ctx context.Context, id string) (*types.Project, error) {
	var record projectRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("项目不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("get project err: %w", err)
	}
	return record.toProject(), nil
}

func (s *GormProjectStore) List(ctx context.Context) ([]*types.Project, error) {
	var records []projectRecord
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list project err: %w", err)
	}
	list := make([]*types.Project, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProject())
	}
	return list, nil
}

func (s *GormProjectStore) Update(ctx context.Context, project *types.Project) error {
	record := toRecord(project)
	res := s.db.WithContext(ctx).Model(&projectRecord{}).Where("id = ?", project.Id).
		Select("*").Omit("id", "created_at").Updates(record)
	if res.Error != nil {
		return fmt.Errorf("update project err: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("项目不存在")
	}
	project.UpdatedAt = record.UpdatedAt
	return nil
}

func (s *GormProjectStore) SaveSegments(ctx context.Context, projectId string, segments []types.Segment) error {
	res := s.db.WithContext(ctx).Model(&projectRecord{}).Where("id = ?", projectId).
		Select("segments", "updated_at").Updates(&projectRecord{Segments: segments, UpdatedAt: time.Now()})
	if res.Error != nil {
		return fmt.Errorf("save segments err: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("项目不存在")
	}
	return nil
}

func (s *GormProjectStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&projectRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete project err: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("项目不存在")
	}
	return nil
}
