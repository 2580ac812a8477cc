package command

const (
	RouteDashboard = "/dashboard"
	RouteScan      = "/scan"
	RouteMedicines = "/medicines"
	RouteReminders = "/reminders"
	RouteVerify    = "/verify-medicine"
	RouteAlarm     = "/emergency"
	RouteLanguage  = "/language"
	RouteSignup    = "/create-account"
)

// navigationTargets maps the global navigation actions onto routes.
var navigationTargets = map[string]string{
	string(ActionHome):           RouteDashboard,
	string(ActionScan):           RouteScan,
	string(ActionMedicines):      RouteMedicines,
	string(ActionReminders):      RouteReminders,
	string(ActionVerifyMedicine): RouteVerify,
	string(ActionAlarm):          RouteAlarm,
}

// TargetFor reports the route a global action navigates to.
func TargetFor(action string) (string, bool) {
	target, ok := navigationTargets[action]
	return target, ok
}

// IsGlobalAction reports whether action is one the dispatcher can perform.
func IsGlobalAction(action string) bool {
	for _, def := range DefaultTable() {
		if string(def.Action) == action {
			return true
		}
	}
	return false
}
