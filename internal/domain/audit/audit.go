// Package audit 元数据变更的前后快照
package audit

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// Action 变更动作
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// 被审计的表
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableSuppliers  = "suppliers"
	TableOrders     = "orders"
	TablePayments   = "payments"
	TableReturns    = "returns"
	TableUserRoles  = "user_roles"
)

// Entry 审计记录（只追加）
type Entry struct {
	ID        uint
	ActorID   *uint
	Action    Action
	TableName string
	RecordID  uint
	OldValue  json.RawMessage // INSERT 时为空
	NewValue  json.RawMessage // DELETE 时为空
	CreatedAt time.Time
}

// Filter 审计查询条件
type Filter struct {
	TableName string
	RecordID  *uint
	ActorID   *uint
	Since     *time.Time
	Page      int
	PageSize  int
}

// Repository 审计仓储
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]*Entry, int64, error)
}

// Recorder 写审计记录；在调用方事务内执行，写失败会让整个变更回滚
type Recorder struct {
	repo Repository
}

// NewRecorder 创建审计记录器
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record 记录一次变更，old/new 为 nil 表示不存在
func (r *Recorder) Record(ctx context.Context, actorID *uint, action Action, table string, recordID uint, old, new interface{}) error {
	oldJSON, err := snapshot(old)
	if err != nil {
		return err
	}
	newJSON, err := snapshot(new)
	if err != nil {
		return err
	}

	return r.repo.Append(ctx, &Entry{
		ActorID:   actorID,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		OldValue:  oldJSON,
		NewValue:  newJSON,
		CreatedAt: time.Now(),
	})
}

func snapshot(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(err, "审计快照序列化失败")
	}
	return data, nil
}
