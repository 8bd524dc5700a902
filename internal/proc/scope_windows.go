//go:build windows

package proc

import (
	"os/exec"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsScope assigns every child to a job object configured to kill
// its whole process tree when the job handle is closed.
type windowsScope struct {
	mu  sync.Mutex
	job windows.Handle
}

func newPlatformScope() (Scope, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, err
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	_, err = windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	)
	if err != nil {
		windows.CloseHandle(job)
		return nil, err
	}
	return &windowsScope{job: job}, nil
}

func (s *windowsScope) Prepare(cmd *exec.Cmd) {
	attr := cmd.SysProcAttr
	if attr == nil {
		attr = &syscall.SysProcAttr{}
	}
	attr.CreationFlags |= windows.CREATE_SUSPENDED
	cmd.SysProcAttr = attr
}

func (s *windowsScope) Track(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	handle, err := windows.OpenProcess(
		windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE|windows.PROCESS_SUSPEND_RESUME,
		false,
		uint32(cmd.Process.Pid),
	)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(handle)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := windows.AssignProcessToJobObject(s.job, handle); err != nil {
		return err
	}
	return resumeProcess(uint32(cmd.Process.Pid))
}

func (s *windowsScope) Untrack(_ *exec.Cmd) {}

func (s *windowsScope) Terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func (s *windowsScope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == windows.InvalidHandle {
		return nil
	}
	err := windows.CloseHandle(s.job)
	s.job = windows.InvalidHandle
	return err
}

// resumeProcess resumes the main thread of a process started suspended,
// after it has been safely placed inside the job.
func resumeProcess(pid uint32) error {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ThreadEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err := windows.Thread32First(snapshot, &entry); err == nil; err = windows.Thread32Next(snapshot, &entry) {
		if entry.OwnerProcessID != pid {
			continue
		}
		thread, err := windows.OpenThread(windows.THREAD_SUSPEND_RESUME, false, entry.ThreadID)
		if err != nil {
			return err
		}
		_, err = windows.ResumeThread(thread)
		windows.CloseHandle(thread)
		if err != nil {
			return err
		}
	}
	return nil
}
