package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/domain/lifecycle"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/enum"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/storage"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

var reportableStatuses = []entity.ExecutionStatus{entity.InProgress, entity.PendingApproval}

type ExecutionDomain interface {
	Advance(context.Context, *model.AdvanceExecutionRequest) (*model.AdvanceExecutionResponse, error)
	GetStatus(context.Context, *model.GetExecutionStatusRequest) (*model.GetExecutionStatusResponse, error)
	GetMyExecutions(context.Context, *model.GetMyExecutionsRequest) (*model.GetMyExecutionsResponse, error)
	UpdateReport(context.Context, *model.UpdateExecutionReportRequest) (*model.UpdateExecutionReportResponse, error)
	UploadPhoto(context.Context, *model.UploadExecutionPhotoRequest) (*model.UploadExecutionPhotoResponse, error)

	// ListExecutionsFor returns executions assigned to the user and executions
	// of quests created by the user.
	ListExecutionsFor(ctx context.Context, userID string) ([]entity.Execution, error)
}

type executionDomain struct {
	executionRepo repository.ExecutionRepository
	workflow      *executionWorkflow
	storage       storage.Storage
}

func NewExecutionDomain(
	executionRepo repository.ExecutionRepository,
	approvalTokenRepo repository.ApprovalTokenRepository,
	rewardRepo repository.RewardRepository,
	achievementRepo repository.AchievementRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
	dispatcher notification.Dispatcher,
	storage storage.Storage,
) *executionDomain {
	return &executionDomain{
		executionRepo: executionRepo,
		workflow: newExecutionWorkflow(
			executionRepo,
			approvalTokenRepo,
			rewardRepo,
			achievementRepo,
			notificationRecordRepo,
			dispatcher,
		),
		storage: storage,
	}
}

func (d *executionDomain) Advance(
	ctx context.Context, req *model.AdvanceExecutionRequest,
) (*model.AdvanceExecutionResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty id")
	}

	target, err := enum.ToEnum[entity.ExecutionStatus](req.Status)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid status: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid status")
	}

	actor := lifecycle.Actor{
		UserID: xcontext.RequestUserID(ctx),
		Role:   entity.UserRole(xcontext.RequestUserRole(ctx)),
	}

	var token string
	err = common.Transaction(ctx, func(ctx context.Context) error {
		execution, err := d.getExecution(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.Override {
			err = lifecycle.CheckOverride(execution, target, actor)
		} else {
			err = lifecycle.Check(execution, target, actor)
		}
		if err != nil {
			return err
		}

		token, err = d.workflow.transition(ctx, execution, target, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if token != "" {
		d.workflow.notifyApprovalRequested(ctx, req.ID, token)
	}

	return &model.AdvanceExecutionResponse{Status: string(target)}, nil
}

func (d *executionDomain) GetStatus(
	ctx context.Context, req *model.GetExecutionStatusRequest,
) (*model.GetExecutionStatusResponse, error) {
	execution, err := d.getExecution(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetExecutionStatusResponse{Status: string(execution.Status)}, nil
}

func (d *executionDomain) GetMyExecutions(
	ctx context.Context, req *model.GetMyExecutionsRequest,
) (*model.GetMyExecutionsResponse, error) {
	executions, err := d.ListExecutionsFor(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	result := []model.Execution{}
	for i := range executions {
		result = append(result, model.ConvertExecution(&executions[i]))
	}

	return &model.GetMyExecutionsResponse{Executions: result}, nil
}

func (d *executionDomain) ListExecutionsFor(ctx context.Context, userID string) ([]entity.Execution, error) {
	executions, err := d.executionRepo.GetListByUserID(ctx, userID)
	if err != nil {
		return nil, common.InternalError(ctx, err, "Cannot get executions of user")
	}

	return executions, nil
}

func (d *executionDomain) UpdateReport(
	ctx context.Context, req *model.UpdateExecutionReportRequest,
) (*model.UpdateExecutionReportResponse, error) {
	err := d.updateReport(ctx, req.ID, map[string]any{"memo": req.Memo})
	if err != nil {
		return nil, err
	}

	return &model.UpdateExecutionReportResponse{}, nil
}

func (d *executionDomain) UploadPhoto(
	ctx context.Context, req *model.UploadExecutionPhotoRequest,
) (*model.UploadExecutionPhotoResponse, error) {
	httpReq := xcontext.HTTPRequest(ctx)
	if httpReq == nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	if err := httpReq.ParseMultipartForm(xcontext.Configs(ctx).File.MaxSize); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	id := httpReq.FormValue("execution_id")
	execution, err := d.getExecution(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkReporter(ctx, execution); err != nil {
		return nil, err
	}

	resp, err := common.ProcessImage(ctx, d.storage, "photo", fmt.Sprintf("photos/%s", execution.ID))
	if err != nil {
		return nil, err
	}

	if err := d.updateReport(ctx, execution.ID, map[string]any{"photo_reference": resp.Url}); err != nil {
		return nil, err
	}

	return &model.UploadExecutionPhotoResponse{PhotoReference: resp.Url}, nil
}

func (d *executionDomain) updateReport(ctx context.Context, id string, updates map[string]any) error {
	return common.Transaction(ctx, func(ctx context.Context) error {
		execution, err := d.getExecution(ctx, id)
		if err != nil {
			return err
		}

		if err := checkReporter(ctx, execution); err != nil {
			return err
		}

		err = d.executionRepo.UpdateReport(
			ctx, execution.ID, xcontext.RequestUserID(ctx), reportableStatuses, updates)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.InvalidState, "The quest status has been changed")
			}

			return common.InternalError(ctx, err, "Cannot update execution report")
		}

		return nil
	})
}

func (d *executionDomain) getExecution(ctx context.Context, id string) (*entity.Execution, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty id")
	}

	execution, err := d.executionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found execution")
		}

		return nil, common.InternalError(ctx, err, "Cannot get execution")
	}

	return execution, nil
}

// checkReporter allows only the assignee to report while the quest is being
// worked on or waiting for approval.
func checkReporter(ctx context.Context, execution *entity.Execution) error {
	if !execution.AssignedTo.Valid || execution.AssignedTo.String != xcontext.RequestUserID(ctx) {
		return errorx.New(errorx.PermissionDenied, "Only the assignee can report")
	}

	if execution.Status != entity.InProgress && execution.Status != entity.PendingApproval {
		return errorx.New(errorx.InvalidState, "Cannot report a quest which is %s", execution.Status)
	}

	return nil
}
