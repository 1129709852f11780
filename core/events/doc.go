// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - TaskFinished: task left the system (completed, canceled or failed)
//   - PlanComputed: path planner produced a route or fell back to a straight line
//   - RobotState: robot pose, battery and status after a tick
//   - Scan: perception pass results
//   - QueueChanged: scheduler queue statistics snapshot
package events
