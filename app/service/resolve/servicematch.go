package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/oops"

	"petsync/app/client/petpro"
	"petsync/app/service/match"
	"petsync/app/service/session"
)

// EnsureServiceMatched resolves the free-text service request against the
// professional's active catalog. A repeated request within the session is
// answered from state without re-scoring. Services without a configured rate
// cannot be booked and fail the stage.
func (s *Service) EnsureServiceMatched(ctx context.Context, st *session.State, request string) (*ServiceResult, error) {
	result := &ServiceResult{
		ProfessionalID: s.professionalID(st),
	}

	request = strings.TrimSpace(request)
	if request == "" {
		result.Status = StatusInsufficientData
		result.Message = "no service requested"
		return result, nil
	}

	if prev, ok := session.Extracted[session.ServiceSummary](st, session.StageServiceResult); ok {
		if prev.Request == request && isSuccess(prev.Status) {
			result.ServiceID = prev.ServiceID
			result.ServiceName = prev.ServiceName
			result.ServiceRateID = prev.ServiceRateID
			result.ServiceRate = prev.ServiceRate
			result.Status = StatusFound
			result.Source = SourceState
			return result, nil
		}
	}

	catalog, cached := session.Extracted[[]petpro.Service](st, session.StageServiceCatalog)
	if !cached {
		fetched, err := s.api.ListServices(ctx, result.ProfessionalID)
		if err != nil {
			result.Status = StatusError
			result.Message = err.Error()
			return result, oops.Wrapf(err, "service stage failed")
		}

		catalog = fetched
		s.record(st, session.StageServiceCatalog, catalog, catalog)
	}

	matched := match.Service(catalog, request)
	if matched == nil {
		result.AvailableServices = pie.Map(catalog, func(svc petpro.Service) string {
			return svc.Name
		})
		result.Status = StatusNotFound
		result.Message = fmt.Sprintf("no service matches %q", request)
		return result, nil
	}

	result.ServiceID = matched.ID
	result.ServiceName = matched.Name

	if !matched.HasRate() {
		result.Status = StatusRateMissing
		result.Message = fmt.Sprintf("service %q has no configured rate", matched.Name)

		s.storeService(st, request, result)
		return result, nil
	}

	result.ServiceRateID = matched.ServiceRate.ID
	result.ServiceRate = matched.ServiceRate.Amount
	result.Status = StatusMatched
	result.Source = SourceAPI

	slog.Info("matched service",
		"request", request,
		"service", matched.Name)

	s.storeService(st, request, result)
	return result, nil
}

func (s *Service) storeService(st *session.State, request string, result *ServiceResult) {
	s.record(st, session.StageServiceResult, result, session.ServiceSummary{
		ServiceID:     result.ServiceID,
		ServiceName:   result.ServiceName,
		ServiceRateID: result.ServiceRateID,
		ServiceRate:   result.ServiceRate,
		Request:       request,
		Status:        result.Status,
	})
}
