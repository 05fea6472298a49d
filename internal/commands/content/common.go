package contentcmd

import (
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

func targetRef(targetType string, targetID uuid.UUID) interfaces.TargetRef {
	return interfaces.TargetRef{Type: targetType, ID: targetID}
}

func targetErrors(messageType, targetType string, targetID uuid.UUID) validation.Errors {
	errs := validation.Errors{}
	if targetType == "" {
		errs["target_type"] = validation.NewError(messageType+".target_type_required", "target_type is required")
	}
	if targetID == uuid.Nil {
		errs["target_id"] = validation.NewError(messageType+".target_id_required", "target_id is required")
	}
	return errs
}

func validateTarget(messageType, targetType string, targetID uuid.UUID) error {
	errs := targetErrors(messageType, targetType, targetID)
	if len(errs) > 0 {
		return errs
	}
	return nil
}
