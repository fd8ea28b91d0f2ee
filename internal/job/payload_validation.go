package job

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rohanmehta-dev/finqueue/common"
)

var validate = validator.New()

// validatePayload unmarshals raw into T and checks its validate tags.
// Failures wrap common.ErrInvalidPayload so enqueue can reject them
// without ever persisting the job.
func validatePayload[T any](raw json.RawMessage) error {
	var payload T

	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: malformed json", common.ErrInvalidPayload)
	}

	if err := validate.Struct(payload); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
		}
		fields := make([]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidPayload, fields)
	}

	return nil
}
