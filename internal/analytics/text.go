package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// RenderTextReport renders a Summary for mail and plain-text consumers. The header and
// totals are always written; the room, peak-hour and duration sections only when they
// have data.
func RenderTextReport(s Summary) string {
	var b strings.Builder

	b.WriteString("=== 스터디룸 예약/사용 통계 분석 ===\n\n")
	fmt.Fprintf(&b, "총 예약 건수: %d건\n", s.Summary.TotalReservations)
	fmt.Fprintf(&b, "총 사용 시간: %.1f시간\n", s.Summary.TotalUsageHours)
	fmt.Fprintf(&b, "총 매출: %d원\n", s.Summary.TotalRevenue)
	fmt.Fprintf(&b, "평균 사용 시간: %.0f분\n", s.Summary.AverageDuration)
	fmt.Fprintf(&b, "전체 이용률: %.2f%%\n", s.Summary.UtilizationRate)

	if len(s.RoomAnalysis) > 0 {
		b.WriteString("\n=== 룸별 사용 현황 ===\n")
		rooms := make([]string, 0, len(s.RoomAnalysis))
		for room := range s.RoomAnalysis {
			rooms = append(rooms, room)
		}
		sort.Strings(rooms)
		for _, room := range rooms {
			u := s.RoomAnalysis[room]
			fmt.Fprintf(&b, "%s: %.2f시간 (%.2f%%)\n", room, u.TotalHours, u.Percentage)
		}
	}

	if len(s.TimeAnalysis.PeakHours) > 0 {
		b.WriteString("\n=== 피크 시간대 ===\n")
		for _, p := range s.TimeAnalysis.PeakHours {
			fmt.Fprintf(&b, "%s: %d건\n", p.Hour, p.Reservations)
		}
	}

	if s.Summary.TotalReservations > 0 {
		d := s.DurationAnalysis
		b.WriteString("\n=== 이용 시간 분포 ===\n")
		fmt.Fprintf(&b, "최소: %d분 / 최대: %d분 / 중앙값: %.1f분 / 표준편차: %.2f분\n",
			d.MinDuration, d.MaxDuration, s.Summary.MedianDuration, d.StdDeviation)
	}

	return b.String()
}
