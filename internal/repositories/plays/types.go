package plays

import (
	"time"

	"github.com/velrin/cadence/internal/models"
)

type AppendRecordInput struct {
	Record *models.PlayRecord
}

type UpdateRecordInput struct {
	Record *models.PlayRecord
}

type GetRecordsSinceInput struct {
	GuildID string
	Since   time.Time
}

type GetRecordsSinceOutput struct {
	Records []*models.PlayRecord
}
