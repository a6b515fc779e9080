// Package logmanager defines the optional diagnostic hook the buffer
// pool calls on page admission, eviction, and flush. It is not a
// write-ahead log; a real WAL is out of core scope.
package logmanager

import "github.com/sirupsen/logrus"

// Manager receives notifications from the buffer pool. A nil Manager is
// always valid; callers that don't want diagnostics simply pass nil.
type Manager interface {
	PageAdmitted(pageID int64, frameID int)
	PageEvicted(pageID int64, frameID int, wasDirty bool)
	PageFlushed(pageID int64)
}

// LogrusManager implements Manager by emitting one structured debug-level
// entry per hook.
type LogrusManager struct {
	log *logrus.Logger
}

// NewLogrusManager wraps an existing *logrus.Logger. Passing nil uses
// logrus's standard logger.
func NewLogrusManager(log *logrus.Logger) *LogrusManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusManager{log: log}
}

func (m *LogrusManager) PageAdmitted(pageID int64, frameID int) {
	m.log.WithFields(logrus.Fields{
		"page_id":  pageID,
		"frame_id": frameID,
	}).Debug("page admitted")
}

func (m *LogrusManager) PageEvicted(pageID int64, frameID int, wasDirty bool) {
	m.log.WithFields(logrus.Fields{
		"page_id":   pageID,
		"frame_id":  frameID,
		"was_dirty": wasDirty,
	}).Debug("page evicted")
}

func (m *LogrusManager) PageFlushed(pageID int64) {
	m.log.WithFields(logrus.Fields{
		"page_id": pageID,
	}).Debug("page flushed")
}
