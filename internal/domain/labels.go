package domain

import "strings"

// IssueType returns the first label that matches the ordered IssueTypes list,
// or TypeUnknown. When an issue carries several type labels the list order
// decides, not the label order on the issue.
func IssueTypeOf(i Issue) string {
    for _, t := range IssueTypes {
        for _, l := range i.Labels {
            if l == t { return t }
        }
    }
    return TypeUnknown
}

// PriorityOf returns the first label carrying a "p." or "s." marker, or
// "unknown" when none is present.
func PriorityOf(i Issue) string {
    for _, l := range i.Labels {
        if strings.Contains(l, "p.") || strings.Contains(l, "s.") { return l }
    }
    return "unknown"
}

// IsTopPriority reports whether priority is in the on-deck set.
func IsTopPriority(priority string) bool {
    for _, p := range TopPriorities {
        if p == priority { return true }
    }
    return false
}

// Ignored reports whether the issue carries any label from the ignore set.
func Ignored(i Issue) bool {
    for _, l := range i.Labels {
        for _, ig := range IgnoreLabels {
            if l == ig { return true }
        }
    }
    return false
}

// HasLabel reports whether the issue carries the exact label.
func HasLabel(i Issue, name string) bool {
    for _, l := range i.Labels {
        if l == name { return true }
    }
    return false
}
