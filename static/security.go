/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package static

import "strings"

// PathSecurityConfig gates which request paths SendFile will serve. It is
// deliberately coarse (segment-based, not a full canonicalizer): the
// wildcard path gin hands a static route is already relative to the
// registered root, so blocking ".." segments, dot-prefixed segments, and a
// configurable blocklist/depth is enough to keep a served tree from leaking
// outside its root without re-implementing filepath.Clean semantics here.
type PathSecurityConfig struct {
	Enabled         bool
	AllowDotFiles   bool
	MaxPathDepth    int
	BlockedPatterns []string
}

// DefaultPathSecurityConfig is the safe-by-default posture: traversal and
// dot-file access blocked, a handful of well-known sensitive names denied
// outright, and a generous but bounded depth.
func DefaultPathSecurityConfig() PathSecurityConfig {
	return PathSecurityConfig{
		Enabled:       true,
		AllowDotFiles: false,
		MaxPathDepth:  10,
		BlockedPatterns: []string{
			".git", ".env", ".htaccess", "__pycache__",
		},
	}
}

// SetPathSecurity replaces the active path security policy.
func (s *staticHandler) SetPathSecurity(cfg PathSecurityConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.security = cfg
}

// GetPathSecurity returns the active path security policy.
func (s *staticHandler) GetPathSecurity() PathSecurityConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.security
}

// IsPathSafe reports whether path passes the active policy. A disabled
// policy accepts everything; otherwise a null byte, a ".." segment, a
// dot-prefixed segment (unless AllowDotFiles), a blocklist substring match,
// or exceeding MaxPathDepth all reject the path.
func (s *staticHandler) IsPathSafe(path string) bool {
	s.mu.RLock()
	cfg := s.security
	s.mu.RUnlock()

	if !cfg.Enabled {
		return true
	}
	if strings.ContainsRune(path, 0) {
		return false
	}

	segments := strings.Split(path, "/")
	depth := 0
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if seg == ".." {
			return false
		}
		if !cfg.AllowDotFiles && strings.HasPrefix(seg, ".") {
			return false
		}
		depth++
	}
	if cfg.MaxPathDepth > 0 && depth > cfg.MaxPathDepth {
		return false
	}

	for _, pat := range cfg.BlockedPatterns {
		if pat != "" && strings.Contains(path, pat) {
			return false
		}
	}

	return true
}
