// ws/events.go - Broadcast event types
package ws

import "time"

// Event type tags carried in the "type" field of every frame.
const (
	EventConnectionEstablished = "CONNECTION_ESTABLISHED"
	EventPointsAwarded         = "POINTS_AWARDED"
	EventAchievementUnlocked   = "ACHIEVEMENT_UNLOCKED"
	EventRankChanged           = "RANK_CHANGED"
	EventPing                  = "PING"
	EventPong                  = "PONG"
	EventError                 = "ERROR"
)

type ConnectionEstablishedEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func ConnectionEstablished() ConnectionEstablishedEvent {
	return ConnectionEstablishedEvent{
		Type:      EventConnectionEstablished,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type PointsAwardedEvent struct {
	Type       string `json:"type"`
	EmployeeID uint   `json:"employeeId"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
}

func PointsAwarded(employeeID uint, points int, reason string) PointsAwardedEvent {
	return PointsAwardedEvent{
		Type:       EventPointsAwarded,
		EmployeeID: employeeID,
		Points:     points,
		Reason:     reason,
	}
}

type AchievementUnlockedEvent struct {
	Type            string `json:"type"`
	EmployeeID      uint   `json:"employeeId"`
	AchievementName string `json:"achievementName"`
}

func AchievementUnlocked(employeeID uint, achievementName string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		Type:            EventAchievementUnlocked,
		EmployeeID:      employeeID,
		AchievementName: achievementName,
	}
}

type RankChangedEvent struct {
	Type    string `json:"type"`
	NewRank int64  `json:"newRank"`
}

func RankChanged(newRank int64) RankChangedEvent {
	return RankChangedEvent{Type: EventRankChanged, NewRank: newRank}
}

type PongEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func Pong() PongEvent {
	return PongEvent{Type: EventPong, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func Error(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}

// inboundMessage is the envelope clients send us; only the tag matters.
type inboundMessage struct {
	Type string `json:"type"`
}
