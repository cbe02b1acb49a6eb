package employee

import "context"

// EmployeeService is used by company admins; every call is scoped to the session company.
type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
	InviteEmployee(ctx context.Context, req InviteEmployeeRequest) (EmployeeResponse, error)
	AssignPlan(ctx context.Context, req AssignPlanRequest) (EmployeeResponse, error)
	DeactivateEmployee(ctx context.Context, employeeID string) (EmployeeResponse, error)
	GetCompanyUsage(ctx context.Context, rangeDays int) ([]UsageRow, error)
}
