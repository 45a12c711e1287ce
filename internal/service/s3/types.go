package s3

import (
	"context"

	sdks3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// RestoreApi は復元処理に必要なS3操作のみを切り出したインターフェース
type RestoreApi interface {
	ListObjectsV2(ctx context.Context, params *sdks3.ListObjectsV2Input, optFns ...func(*sdks3.Options)) (*sdks3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *sdks3.HeadObjectInput, optFns ...func(*sdks3.Options)) (*sdks3.HeadObjectOutput, error)
	RestoreObject(ctx context.Context, params *sdks3.RestoreObjectInput, optFns ...func(*sdks3.Options)) (*sdks3.RestoreObjectOutput, error)
}

// RestoreOptions はGlacier復元リクエストのオプション
type RestoreOptions struct {
	Bucket  string
	Prefix  string
	Days    int32      // 復元データの保持日数
	Tier    types.Tier // Expedited / Standard / Bulk
	Workers int        // 並列実行数（0以下はデフォルト10）
}

// StatusOptions は復元ステータス確認のオプション
type StatusOptions struct {
	Bucket  string
	Prefix  string
	Workers int
}

// RestoreStatus は1オブジェクトの復元処理結果
type RestoreStatus string

const (
	StatusCompleted   RestoreStatus = "Completed"
	StatusInProgress  RestoreStatus = "In Progress"
	StatusRequested   RestoreStatus = "Requested"
	StatusNotEligible RestoreStatus = "Not Eligible"
	StatusNotStarted  RestoreStatus = "Not Started"
	StatusFailed      RestoreStatus = "Failed"
	StatusError       RestoreStatus = "Error"
)

// ObjectInfo はGlacier階層にあるオブジェクトのキーとサイズ
type ObjectInfo struct {
	Key  string
	Size int64
}

// RestoreResult は1オブジェクトの復元リクエスト結果
type RestoreResult struct {
	Key    string
	Status RestoreStatus
	Tier   types.Tier // 実際に使用したティア（対象外の場合は空）
	err    error      // Failed時の原因（ティアフォールバック判定に使用）
}

// RestoreSummary は復元リクエスト実行後の集計
type RestoreSummary struct {
	Total        int
	TotalSize    int64
	StatusCounts map[RestoreStatus]int
	TierUsage    map[types.Tier]int
}

// StatusSummary は復元ステータス確認の集計
type StatusSummary struct {
	Total        int
	Completed    int
	InProgress   int
	NotStarted   int
	Errors       int
	TotalSize    int64
	RestoredSize int64
}

// PercentComplete は復元完了率（%）を返す
func (s StatusSummary) PercentComplete() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
