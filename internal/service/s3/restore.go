package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"awsaudit/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdks3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/schollz/progressbar/v3"
)

const defaultRestoreWorkers = 10

// RestoreObjects はバケット/プレフィックス配下のGlacier階層オブジェクトに
// 復元リクエストを発行し、結果のサマリーを表示する。
// 個々のオブジェクトの失敗は記録して続行する（全体は中断しない）。
func RestoreObjects(client RestoreApi, opts RestoreOptions) error {
	objects, err := ListGlacierObjects(client, opts.Bucket, opts.Prefix)
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		fmt.Println(common.FormatEmptyMessage("Glacier階層のオブジェクト"))
		return nil
	}

	fmt.Printf("🔄 %d個のオブジェクトを処理します（%s %s配下）...\n", len(objects), opts.Bucket, opts.Prefix)

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultRestoreWorkers
	}

	bar := progressbar.NewOptions(len(objects),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("復元リクエスト中..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	exec := common.NewParallelExecutor(workers)
	results := make([]RestoreResult, len(objects))
	var mu sync.Mutex

	for i, obj := range objects {
		idx := i
		key := obj.Key
		exec.Execute(func() {
			result := checkAndRestoreObject(client, opts.Bucket, key, opts.Days, opts.Tier)

			mu.Lock()
			results[idx] = result
			_ = bar.Add(1)
			mu.Unlock()
		})
	}
	exec.Wait()
	_ = bar.Finish()
	fmt.Println()

	// 結果の一覧とサマリー
	items := make([]common.ListItem, 0, len(results))
	for _, r := range results {
		status := string(r.Status)
		if r.Tier != "" {
			status = fmt.Sprintf("%s / %s", r.Status, r.Tier)
		}
		items = append(items, common.ListItem{Name: r.Key, Status: status})
	}
	common.PrintStatusList("復元リクエスト結果", items, "オブジェクト")

	summary := summarizeRestore(objects, results)
	PrintRestoreSummary(summary)
	return nil
}

// ListGlacierObjects はプレフィックス配下のGlacier階層オブジェクトを列挙する
// プレフィックス自体のプレースホルダーとサイズ0のキーは対象外
func ListGlacierObjects(client RestoreApi, bucket, prefix string) ([]ObjectInfo, error) {
	paginator := sdks3.NewListObjectsV2Paginator(client, &sdks3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var objects []ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, common.FormatListError("S3オブジェクト", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			size := aws.ToInt64(obj.Size)
			if key == prefix || size == 0 {
				continue
			}
			if !isGlacierStorageClass(obj.StorageClass) {
				continue
			}
			objects = append(objects, ObjectInfo{Key: key, Size: size})
		}
	}
	return objects, nil
}

// checkAndRestoreObject は1オブジェクトのステータス確認と復元リクエストを行う
func checkAndRestoreObject(client RestoreApi, bucket, key string, days int32, tier types.Tier) RestoreResult {
	ctx := context.Background()

	// まず現在の復元ステータスを確認
	head, err := client.HeadObject(ctx, &sdks3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		if !isGlacierHeadStorageClass(head.StorageClass) {
			return RestoreResult{Key: key, Status: StatusNotEligible}
		}
		switch parseRestoreField(head.Restore) {
		case StatusInProgress:
			return RestoreResult{Key: key, Status: StatusInProgress, Tier: tier}
		case StatusCompleted:
			return RestoreResult{Key: key, Status: StatusCompleted, Tier: tier}
		}
	}
	// HeadObject失敗時はそのまま復元リクエストを試みる（元の挙動に合わせる）

	result := requestRestore(client, bucket, key, days, tier)
	if result.Status == StatusFailed && tier == types.TierExpedited && isExpeditedUnavailable(result.err) {
		// Expeditedが使えない場合はStandardで1回だけリトライ
		return requestRestore(client, bucket, key, days, types.TierStandard)
	}
	return result
}

// requestRestore は指定ティアで復元リクエストを1回発行する
func requestRestore(client RestoreApi, bucket, key string, days int32, tier types.Tier) RestoreResult {
	_, err := client.RestoreObject(context.Background(), &sdks3.RestoreObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		RestoreRequest: &types.RestoreRequest{
			Days: aws.Int32(days),
			GlacierJobParameters: &types.GlacierJobParameters{
				Tier: tier,
			},
		},
	})
	if err == nil {
		return RestoreResult{Key: key, Status: StatusRequested, Tier: tier}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "RestoreAlreadyInProgress":
			return RestoreResult{Key: key, Status: StatusInProgress, Tier: tier}
		case "InvalidObjectState":
			return RestoreResult{Key: key, Status: StatusNotEligible}
		}
	}
	return RestoreResult{Key: key, Status: StatusFailed, Tier: tier, err: err}
}

// isExpeditedUnavailable はExpeditedティアの容量不足/利用不可エラーか判定する
func isExpeditedUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "GlacierExpeditedRetrievalNotAvailable" {
			return true
		}
		msg := apiErr.ErrorMessage()
		if strings.Contains(msg, "rate of expedited retrievals") ||
			strings.Contains(msg, "cannot be expedited") {
			return true
		}
	}
	return false
}

// parseRestoreField はHeadObjectのRestoreヘッダーからステータスを判定する
func parseRestoreField(restore *string) RestoreStatus {
	if restore == nil {
		return StatusNotStarted
	}
	if strings.Contains(*restore, `ongoing-request="true"`) {
		return StatusInProgress
	}
	if strings.Contains(*restore, `ongoing-request="false"`) {
		return StatusCompleted
	}
	return StatusNotStarted
}

func isGlacierStorageClass(sc types.ObjectStorageClass) bool {
	switch sc {
	case types.ObjectStorageClassGlacier,
		types.ObjectStorageClassDeepArchive,
		types.ObjectStorageClassGlacierIr:
		return true
	}
	return false
}

func isGlacierHeadStorageClass(sc types.StorageClass) bool {
	switch sc {
	case types.StorageClassGlacier,
		types.StorageClassDeepArchive,
		types.StorageClassGlacierIr:
		return true
	}
	return false
}

// summarizeRestore は復元リクエスト結果を集計する
func summarizeRestore(objects []ObjectInfo, results []RestoreResult) RestoreSummary {
	summary := RestoreSummary{
		Total:        len(objects),
		StatusCounts: make(map[RestoreStatus]int),
		TierUsage:    make(map[types.Tier]int),
	}
	for _, obj := range objects {
		summary.TotalSize += obj.Size
	}
	for _, r := range results {
		summary.StatusCounts[r.Status]++
		if r.Tier != "" && (r.Status == StatusRequested || r.Status == StatusInProgress) {
			summary.TierUsage[r.Tier]++
		}
	}
	return summary
}

// PrintRestoreSummary は復元リクエストのサマリーを表示する
func PrintRestoreSummary(summary RestoreSummary) {
	fmt.Println("\n===== Glacier Restore Status Summary =====")
	fmt.Printf("Total objects scanned:        %d\n", summary.Total)
	fmt.Printf("Total data size (GB):         %.2f\n", float64(summary.TotalSize)/(1024*1024*1024))
	for _, status := range []RestoreStatus{StatusCompleted, StatusInProgress, StatusRequested, StatusNotEligible, StatusFailed} {
		fmt.Printf("%-29s %d\n", string(status)+":", summary.StatusCounts[status])
	}
	if len(summary.TierUsage) > 0 {
		fmt.Println("Tier usage (for restore requests):")
		for tier, count := range summary.TierUsage {
			fmt.Printf("  %s: %d\n", tier, count)
		}
	}
}
