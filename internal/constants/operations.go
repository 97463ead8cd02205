package constants

// The turnaround task list is fixed, process-wide configuration. Every
// flight's operations map is keyed by a subset of these names, in this order.
const (
	TaskRealArrival      = "Real Arrival (ON/IN)"
	TaskDisembarkation   = "Disembarkation"
	TaskCabinCleaning    = "Cabin Cleaning"
	TaskCatering         = "Catering"
	TaskFueling          = "Fueling"
	TaskBaggageUnloading = "Baggage Unloading"
	TaskCargoLoading     = "Cargo Loading"
	TaskBoarding         = "Boarding"
	TaskDoorsClosed      = "Doors Closed"
	TaskPushback         = "Push-back"
	TaskTakeoff          = "Takeoff"
)

// Anchor tasks for the turnaround computation: the live countdown starts from
// the arrival task's end timestamp, and departure is anchored on push-back.
const (
	ArrivalAnchorTask   = TaskRealArrival
	DepartureAnchorTask = TaskPushback
)

var operationTasks = []string{
	TaskRealArrival,
	TaskDisembarkation,
	TaskCabinCleaning,
	TaskCatering,
	TaskFueling,
	TaskBaggageUnloading,
	TaskCargoLoading,
	TaskBoarding,
	TaskDoorsClosed,
	TaskPushback,
	TaskTakeoff,
}

// Instantaneous tasks are recorded with a single timestamp; start and end are
// always written together with the same value.
var instantaneousTasks = map[string]struct{}{
	TaskDoorsClosed: {},
	TaskTakeoff:     {},
}

// AllTasks returns the ordered task list. The returned slice is a copy.
func AllTasks() []string {
	tasks := make([]string, len(operationTasks))
	copy(tasks, operationTasks)
	return tasks
}

// IsInstantaneous reports whether the named task is recorded with a single
// timestamp.
func IsInstantaneous(name string) bool {
	_, ok := instantaneousTasks[name]
	return ok
}

// IsKnownTask reports whether the name belongs to the registry. The store
// uses this to drop unknown keys when rehydrating from storage.
func IsKnownTask(name string) bool {
	for _, t := range operationTasks {
		if t == name {
			return true
		}
	}
	return false
}
