package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/internal/migration"
	"prodflow/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const initiativeColumns = `
	id, title, problem_statement, item_type, phase, status,
	rice_reach, rice_impact, rice_confidence, rice_effort,
	COALESCE(owner_id, '') AS owner_id, COALESCE(project_id, '') AS project_id,
	COALESCE(parent_id, '') AS parent_id, period_type, period_value,
	experiment_data, tags, created_at, updated_at`

// initiativeRow is the scan target for the initiatives table
type initiativeRow struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	ProblemStatement string         `db:"problem_statement"`
	ItemType         string         `db:"item_type"`
	Phase            string         `db:"phase"`
	Status           string         `db:"status"`
	RiceReach        int            `db:"rice_reach"`
	RiceImpact       int            `db:"rice_impact"`
	RiceConfidence   int            `db:"rice_confidence"`
	RiceEffort       int            `db:"rice_effort"`
	OwnerID          string         `db:"owner_id"`
	ProjectID        string         `db:"project_id"`
	ParentID         string         `db:"parent_id"`
	PeriodType       string         `db:"period_type"`
	PeriodValue      string         `db:"period_value"`
	ExperimentData   []byte         `db:"experiment_data"`
	Tags             pq.StringArray `db:"tags"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row initiativeRow) toDomain() (*initiative.Initiative, error) {
	it := &initiative.Initiative{
		ID:               core.InitiativeID(row.ID),
		Title:            row.Title,
		ProblemStatement: row.ProblemStatement,
		ItemType:         initiative.ItemType(row.ItemType),
		Phase:            initiative.Phase(row.Phase),
		Status:           initiative.Status(row.Status),
		RICE: initiative.RICE{
			Reach:      row.RiceReach,
			Impact:     row.RiceImpact,
			Confidence: row.RiceConfidence,
			Effort:     row.RiceEffort,
		},
		OwnerID:     core.MemberID(row.OwnerID),
		ProjectID:   core.ProjectID(row.ProjectID),
		ParentID:    core.InitiativeID(row.ParentID),
		PeriodType:  initiative.PeriodType(row.PeriodType),
		PeriodValue: row.PeriodValue,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Tags) > 0 {
		it.Tags = []string(row.Tags)
	}
	if len(row.ExperimentData) > 0 && string(row.ExperimentData) != "null" {
		var ed initiative.ExperimentData
		if err := json.Unmarshal(row.ExperimentData, &ed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experiment_data for %s: %w", row.ID, err)
		}
		it.ExperimentData = &ed
	}
	return it, nil
}

// InitiativeRepositoryImpl implements InitiativeRepository for PostgreSQL
type InitiativeRepositoryImpl struct {
	db *sqlx.DB
}

var _ ports.InitiativeRepository = (*InitiativeRepositoryImpl)(nil)

// NewInitiativeRepository creates a new PostgreSQL initiative repository
func NewInitiativeRepository(db *sqlx.DB) *InitiativeRepositoryImpl {
	return &InitiativeRepositoryImpl{db: db}
}

// Get retrieves an initiative by id
func (r *InitiativeRepositoryImpl) Get(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
	var row initiativeRow
	err := r.db.GetContext(ctx, &row, `SELECT `+initiativeColumns+` FROM initiatives WHERE id = $1`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("initiative", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get initiative %s: %w", id, err)
	}
	return row.toDomain()
}

// List returns initiatives matching filter, oldest first
func (r *InitiativeRepositoryImpl) List(ctx context.Context, filter initiative.Filter) ([]*initiative.Initiative, error) {
	where, args := buildFilter(filter)
	query := `SELECT ` + initiativeColumns + ` FROM initiatives` + where + ` ORDER BY created_at ASC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []initiativeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list initiatives: %w", err)
	}

	items := make([]*initiative.Initiative, 0, len(rows))
	for _, row := range rows {
		it, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// Create inserts a new initiative with a fresh id
func (r *InitiativeRepositoryImpl) Create(ctx context.Context, it *initiative.Initiative) (*initiative.Initiative, error) {
	experimentJSON, err := marshalExperiment(it.ExperimentData)
	if err != nil {
		return nil, err
	}

	id := core.NewInitiativeID()
	var row initiativeRow
	err = r.db.QueryRowxContext(ctx, `
		INSERT INTO initiatives (
			id, title, problem_statement, item_type, phase, status,
			rice_reach, rice_impact, rice_confidence, rice_effort,
			owner_id, project_id, parent_id, period_type, period_value,
			experiment_data, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING `+initiativeColumns,
		string(id), it.Title, it.ProblemStatement, string(it.ItemType), string(it.Phase), string(it.Status),
		it.Reach, it.Impact, it.Confidence, it.Effort,
		nullable(string(it.OwnerID)), nullable(string(it.ProjectID)), nullable(string(it.ParentID)),
		string(it.PeriodType), it.PeriodValue,
		experimentJSON, pq.StringArray(tagsOrEmpty(it.Tags)),
	).StructScan(&row)
	if err != nil {
		if isDeliveryChildViolation(err) {
			return nil, core.NewDuplicateChildError(it.ParentID.String())
		}
		return nil, fmt.Errorf("failed to create initiative: %w", err)
	}
	return row.toDomain()
}

// Update applies patch in a single statement
func (r *InitiativeRepositoryImpl) Update(ctx context.Context, id core.InitiativeID, patch initiative.Patch) (*initiative.Initiative, error) {
	set, args, err := buildUpdate(patch)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, string(id))
	query := fmt.Sprintf(`UPDATE initiatives SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), initiativeColumns)

	var row initiativeRow
	err = r.db.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("initiative", id.String())
	}
	if err != nil {
		if isDeliveryChildViolation(err) {
			return nil, core.NewDeliveryConflictError(id.String())
		}
		return nil, fmt.Errorf("failed to update initiative %s: %w", id, err)
	}
	return row.toDomain()
}

// Delete removes an initiative
func (r *InitiativeRepositoryImpl) Delete(ctx context.Context, id core.InitiativeID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM initiatives WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete initiative %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.NewNotFoundError("initiative", id.String())
	}
	return nil
}

// buildFilter renders the WHERE clause for filter with positional args
func buildFilter(f initiative.Filter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if len(f.IDs) > 0 {
		ids := make([]string, len(f.IDs))
		for idx, id := range f.IDs {
			ids[idx] = string(id)
		}
		add("id = ANY($%d)", pq.Array(ids))
	}
	if f.Phase != "" {
		add("phase = $%d", string(f.Phase))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.ItemType != "" {
		add("item_type = $%d", string(f.ItemType))
	}
	if f.ParentID != "" {
		add("parent_id = $%d", string(f.ParentID))
	}
	if f.OwnerID != "" {
		add("owner_id = $%d", string(f.OwnerID))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildUpdate renders the SET assignments for the non-nil fields of p
func buildUpdate(p initiative.Patch) ([]string, []interface{}, error) {
	var (
		set  []string
		args []interface{}
	)
	assign := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Title != nil {
		assign("title", *p.Title)
	}
	if p.ProblemStatement != nil {
		assign("problem_statement", *p.ProblemStatement)
	}
	if p.Phase != nil {
		assign("phase", string(*p.Phase))
	}
	if p.Status != nil {
		assign("status", string(*p.Status))
	}
	if p.RICE != nil {
		assign("rice_reach", p.RICE.Reach)
		assign("rice_impact", p.RICE.Impact)
		assign("rice_confidence", p.RICE.Confidence)
		assign("rice_effort", p.RICE.Effort)
	}
	if p.OwnerID != nil {
		assign("owner_id", nullable(string(*p.OwnerID)))
	}
	if p.ProjectID != nil {
		assign("project_id", nullable(string(*p.ProjectID)))
	}
	if p.PeriodType != nil {
		assign("period_type", string(*p.PeriodType))
	}
	if p.PeriodValue != nil {
		assign("period_value", *p.PeriodValue)
	}
	if p.ExperimentData != nil {
		data, err := marshalExperiment(p.ExperimentData)
		if err != nil {
			return nil, nil, err
		}
		assign("experiment_data", data)
	}
	if p.Tags != nil {
		assign("tags", pq.StringArray(tagsOrEmpty(*p.Tags)))
	}
	return set, args, nil
}

// marshalExperiment encodes the record as JSON text; lib/pq would send []byte as bytea
func marshalExperiment(ed *initiative.ExperimentData) (sql.NullString, error) {
	if ed == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ed)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal experiment_data: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func isDeliveryChildViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == migration.DeliveryChildIndex
}
