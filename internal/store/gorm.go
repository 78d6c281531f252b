package store

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
)

// GormStore is the live collaborator backed by postgres.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore wraps an open connection. Every call is bounded by timeout.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// translate maps driver errors onto the shared taxonomy.
func translate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrapf(apperrors.ErrNotFound, format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == "23505":
		return errors.Wrapf(apperrors.ErrConflict, format, args...)
	case unreachable(err):
		return errors.Wrapf(apperrors.Unavailable(err), format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func unreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// connection exceptions and operator intervention
	code := pgCode(err)
	return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P")
}

func (s *GormStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var products []models.Product
	if err := db.Preload("Fabrics").Order("name ASC").Find(&products).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

func (s *GormStore) SeedCatalog(ctx context.Context, products []models.Product) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return translate(err, "count products")
	}
	if count > 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "seed products")
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if profile.Role == "" {
		profile.Role = models.RoleCustomer
	}
	return translate(db.Create(profile).Error, "create profile %s", profile.Email)
}

func (s *GormStore) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var profile models.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		return models.Profile{}, translate(err, "profile %s", id)
	}
	return profile, nil
}

func (s *GormStore) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var profile models.Profile
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&profile).Error; err != nil {
		return models.Profile{}, translate(err, "profile %s", email)
	}
	return profile, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	result := db.Model(profile).
		Select("full_name", "phone", "address", "role", "password_hash").
		Updates(profile)
	if result.Error != nil {
		return translate(result.Error, "update profile %s", profile.ID)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(apperrors.ErrNotFound, "profile %s", profile.ID)
	}
	return translate(db.First(profile, "id = ?", profile.ID).Error, "reload profile %s", profile.ID)
}

func (s *GormStore) ListCustomers(ctx context.Context) ([]models.CustomerSummary, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var customers []models.CustomerSummary
	err := db.Table("profiles AS p").
		Select(`p.*, COUNT(o.id) AS order_count,
			COALESCE(SUM(CASE WHEN o.status <> ? THEN o.total_amount ELSE 0 END), 0) AS total_spent`, models.StatusCancelled).
		Joins("LEFT JOIN orders AS o ON o.user_id = p.id").
		Where("p.role = ?", models.RoleCustomer).
		Group("p.id").
		Order("p.created_at DESC").
		Scan(&customers).Error
	if err != nil {
		return nil, translate(err, "list customers")
	}
	return customers, nil
}

func (s *GormStore) CountCustomers(ctx context.Context) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var n int64
	err := db.Model(&models.Profile{}).Where("role = ?", models.RoleCustomer).Count(&n).Error
	return n, translate(err, "count customers")
}

func (s *GormStore) ListMeasurements(ctx context.Context, userID uuid.UUID) ([]models.MeasurementProfile, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var out []models.MeasurementProfile
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, translate(err, "list measurements")
	}
	return out, nil
}

func (s *GormStore) GetMeasurement(ctx context.Context, userID, id uuid.UUID) (models.MeasurementProfile, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var m models.MeasurementProfile
	if err := db.First(&m, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return models.MeasurementProfile{}, translate(err, "measurement %s", id)
	}
	return m, nil
}

func (s *GormStore) CreateMeasurement(ctx context.Context, m *models.MeasurementProfile) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	return translate(db.Create(m).Error, "create measurement")
}

func (s *GormStore) SaveMeasurement(ctx context.Context, m *models.MeasurementProfile) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	result := db.Model(m).
		Where("user_id = ?", m.UserID).
		Select("nickname", "neck", "chest", "waist", "hips", "arm_length", "height", "shoulder").
		Updates(m)
	if result.Error != nil {
		return translate(result.Error, "update measurement %s", m.ID)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(apperrors.ErrNotFound, "measurement %s", m.ID)
	}
	return translate(db.First(m, "id = ?", m.ID).Error, "reload measurement %s", m.ID)
}

func (s *GormStore) DeleteMeasurement(ctx context.Context, userID, id uuid.UUID) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.MeasurementProfile{})
	if result.Error != nil {
		return translate(result.Error, "delete measurement %s", id)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(apperrors.ErrNotFound, "measurement %s", id)
	}
	return nil
}

func (s *GormStore) CreateDesignUpload(ctx context.Context, upload *models.DesignUpload) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	return translate(db.Create(upload).Error, "record design %s", upload.URL)
}

func (s *GormStore) GetDesignUpload(ctx context.Context, userID uuid.UUID, url string) (models.DesignUpload, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var d models.DesignUpload
	if err := db.First(&d, "url = ? AND user_id = ?", url, userID).Error; err != nil {
		return models.DesignUpload{}, translate(err, "design %s", url)
	}
	return d, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	return translate(err, "create order %s", order.OrderNumber)
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return models.Order{}, translate(err, "order %s", id)
	}
	return order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	query := db.Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count orders")
	}

	query = query.Preload("Items").Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, translate(err, "list orders")
	}
	return orders, total, nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) (models.Order, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var (
		order     models.Order
		mutateErr error
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Find(&order.Items).Error; err != nil {
			return err
		}
		if mutateErr = mutate(&order); mutateErr != nil {
			return mutateErr
		}
		return tx.Model(&order).Select("status", "actual_delivery", "updated_at").Updates(&order).Error
	})
	if mutateErr != nil {
		return models.Order{}, mutateErr
	}
	if err != nil {
		return models.Order{}, translate(err, "update order %s", id)
	}
	return order, nil
}

func (s *GormStore) OrderTotals(ctx context.Context) (OrderTotals, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var rows []struct {
		Status  models.OrderStatus
		Count   int64
		Revenue int64
	}
	err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return OrderTotals{}, translate(err, "order totals")
	}

	totals := OrderTotals{ByStatus: make(map[models.OrderStatus]int64, len(rows))}
	for _, row := range rows {
		totals.Count += row.Count
		totals.ByStatus[row.Status] = row.Count
		if row.Status == models.StatusDelivered {
			totals.DeliveredRevenue = row.Revenue
		}
	}
	return totals, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err, "ping")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return translate(sqlDB.PingContext(ctx), "ping")
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
