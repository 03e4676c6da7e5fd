package sshprobe

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	maxConcurrentAttempts = 5
	authTimeout           = 5 * time.Second
	bannerTimeout         = 10 * time.Second
	maxRetries            = 2
	bannerTimeoutBackoff  = 2 * time.Second
	networkErrorBackoff   = 500 * time.Millisecond
	interAttemptSleep     = 100 * time.Millisecond
)

// Credential is a successful (username, password) pair found during a
// brute-force audit.
type Credential struct {
	User          string `json:"user"`
	Pass          string `json:"pass"`
	IsCompromised bool   `json:"is_compromised"`
}

type attempt struct {
	user, pass string
}

// BruteForce tries the cartesian product of usernames x passwords against
// host:port, stopping at the first successful login. Bounded to
// maxConcurrentAttempts simultaneous connections, per spec.md §4.B. Returns
// zero or one credential; every internal failure is swallowed, so the only
// externally visible outcomes are "found one" or "found none".
func BruteForce(host string, port int, usernames, passwords []string) []Credential {
	tasks := cartesianProduct(clean(usernames), clean(passwords))
	if len(tasks) == 0 {
		return nil
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	var (
		mu     sync.Mutex
		found  *Credential
		cancel = make(chan struct{})
		once   sync.Once
	)
	stop := func() { once.Do(func() { close(cancel) }) }

	sem := make(chan struct{}, maxConcurrentAttempts)
	var wg sync.WaitGroup

	for _, a := range tasks {
		select {
		case <-cancel:
		default:
			wg.Add(1)
			sem <- struct{}{}
			go func(a attempt) {
				defer wg.Done()
				defer func() { <-sem }()
				defer time.Sleep(interAttemptSleep)

				select {
				case <-cancel:
					return
				default:
				}

				if tryLogin(addr, a.user, a.pass, cancel) {
					mu.Lock()
					if found == nil {
						found = &Credential{User: a.user, Pass: a.pass, IsCompromised: true}
					}
					mu.Unlock()
					stop()
				}
			}(a)
		}
	}
	wg.Wait()

	if found == nil {
		return nil
	}
	return []Credential{*found}
}

// tryLogin attempts a single password authentication, retrying transient
// network/protocol errors up to maxRetries times with a class-dependent
// backoff. Authentication failures (bad credentials) are never retried.
func tryLogin(addr, user, pass string, cancel <-chan struct{}) bool {
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(pass)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         authTimeout,
	}

	for try := 0; try <= maxRetries; try++ {
		select {
		case <-cancel:
			return false
		default:
		}

		client, err := dialWithBannerTimeout(addr, cfg, bannerTimeout)
		if err == nil {
			client.Close()
			return true
		}

		if isAuthFailure(err) {
			return false
		}

		backoff := networkErrorBackoff
		if isBannerTimeout(err) {
			backoff = bannerTimeoutBackoff
		}
		select {
		case <-cancel:
			return false
		case <-time.After(backoff):
		}
	}
	return false
}

func dialWithBannerTimeout(addr string, cfg *ssh.ClientConfig, bannerTimeout time.Duration) (*ssh.Client, error) {
	conn, err := net.DialTimeout("tcp", addr, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	conn.SetDeadline(time.Now().Add(bannerTimeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain") ||
		strings.Contains(msg, "permission denied")
}

func isBannerTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "i/o timeout") || strings.Contains(msg, "EOF")
}

func clean(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cartesianProduct(users, passes []string) []attempt {
	out := make([]attempt, 0, len(users)*len(passes))
	for _, u := range users {
		for _, p := range passes {
			out = append(out, attempt{user: u, pass: p})
		}
	}
	return out
}
