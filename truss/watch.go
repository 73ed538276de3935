package truss

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Update is the outcome of reparsing a watched file. Exactly one of Truss and
// Err is non-nil.
type Update struct {
	Truss *Truss
	Err   error
}

// Watcher reparses a truss file whenever it is written and hands the result
// to the consumer over [Watcher.Updates]. Only the latest update is kept:
// a pending unconsumed update is replaced by a newer one.
type Watcher struct {
	fs      *fsnotify.Watcher
	name    string
	updates chan Update
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching filename. The containing directory is watched so
// that editors replacing the file on save are still observed.
func Watch(filename string) (*Watcher, error) {
	if filename == "" {
		return nil, errors.New("empty truss filename")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	name := filepath.Clean(filename)
	err = fsw.Add(filepath.Dir(name))
	if err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fs:      fsw,
		name:    name,
		updates: make(chan Update, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Updates returns the channel reparsed trusses are delivered on. The render
// loop should drain it without blocking between frames.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			t, err := Load(w.name)
			if err != nil {
				w.send(Update{Err: err})
			} else {
				w.send(Update{Truss: t})
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.send(Update{Err: err})
		}
	}
}

// send delivers u, dropping a stale pending update if the consumer is behind.
func (w *Watcher) send(u Update) {
	for {
		select {
		case w.updates <- u:
			return
		case <-w.done:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}
