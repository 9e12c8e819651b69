package biz

import (
	"context"
	"strconv"

	"github.com/umardraz9/mlmpk-sub002/internal/constants"
)

// GetExpiringMemberships 获取即将过期的会员（续费提醒用）
func (uc *MembershipUsecase) GetExpiringMemberships(ctx context.Context, daysBeforeExpiry, page, pageSize int) ([]*Membership, int, error) {
	uc.log.Infof("GetExpiringMemberships: daysBeforeExpiry=%d, page=%d, pageSize=%d", daysBeforeExpiry, page, pageSize)

	// 参数验证
	if daysBeforeExpiry < 1 || daysBeforeExpiry > constants.MaxExpiryDays {
		daysBeforeExpiry = constants.DefaultExpiryDays
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}

	memberships, total, err := uc.memRepo.GetExpiringMemberships(ctx, daysBeforeExpiry, page, pageSize)
	if err != nil {
		uc.log.Errorf("Failed to get expiring memberships: %v", err)
		return nil, 0, err
	}

	uc.log.Infof("Found %d expiring memberships (within %d days)", total, daysBeforeExpiry)
	return memberships, total, nil
}

// UpdateExpiredMemberships 批量把到期会员置为过期状态
// 只翻转状态，不动收益窗口：延长窗口未结束的用户过期后仍可继续做任务。
func (uc *MembershipUsecase) UpdateExpiredMemberships(ctx context.Context) (int, []uint64, error) {
	uc.log.Infof("Starting to update expired memberships")

	count, uids, err := uc.memRepo.UpdateExpiredMemberships(ctx)
	if err != nil {
		uc.log.Errorf("Failed to update expired memberships: %v", err)
		return 0, nil, err
	}

	// 为每个过期的会员补历史记录
	for _, uid := range uids {
		m, err := uc.memRepo.GetMembership(ctx, uid)
		if err != nil {
			uc.log.Errorf("Failed to get membership for user %d: %v", uid, err)
			continue
		}
		if m == nil {
			continue
		}
		_ = uc.addHistory(ctx, m, constants.ActionExpired)
	}

	uc.log.Infof("Updated %d expired memberships", count)
	return count, uids, nil
}

// NotifyExpiringMemberships 给即将过期的会员发送续费提醒
func (uc *MembershipUsecase) NotifyExpiringMemberships(ctx context.Context, daysBeforeExpiry int) (int, error) {
	memberships, total, err := uc.GetExpiringMemberships(ctx, daysBeforeExpiry, 1, constants.MaxPageSize)
	if err != nil {
		return 0, err
	}

	for _, m := range memberships {
		uc.notifyQuietly(ctx, m.UserID, constants.NotifyKindMembershipExpiring, map[string]string{
			"plan":   m.PlanName,
			"end_at": strconv.FormatInt(m.EndTime.Unix(), 10),
		})
	}

	uc.log.Infof("Sent expiry reminders to %d of %d expiring memberships", len(memberships), total)
	return len(memberships), nil
}
