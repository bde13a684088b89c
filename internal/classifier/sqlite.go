package classifier

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite artifacts hold a key/value "model" table plus either a
// "coefficients" table (logistic regression) or a "nodes" table (decision tree):
//
//	model(key TEXT, value TEXT)              -- kind, intercept, threshold
//	coefficients(feature TEXT, weight REAL)
//	nodes(id INTEGER, feature_idx INTEGER, threshold REAL,
//	      left_child INTEGER, right_child INTEGER, class_label INTEGER, is_leaf INTEGER)
func loadSQLite(path string) (Classifier, error) {
	// sql.Open would happily create an empty database for a missing file.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readModelTable(db)
	if err != nil {
		return nil, err
	}

	switch kind := meta["kind"]; kind {
	case KindLogisticRegression:
		return readLogisticRegression(db, meta)
	case KindDecisionTree:
		return readDecisionTree(db)
	case "":
		return nil, fmt.Errorf("model table has no kind")
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

func readModelTable(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query("SELECT key, value FROM model")
	if err != nil {
		return nil, fmt.Errorf("reading model table: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func readLogisticRegression(db *sql.DB, meta map[string]string) (Classifier, error) {
	m := &LogisticRegression{}

	var err error
	if m.Intercept, err = metaFloat(meta, "intercept"); err != nil {
		return nil, err
	}
	if m.Threshold, err = metaFloat(meta, "threshold"); err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT feature, weight FROM coefficients")
	if err != nil {
		return nil, fmt.Errorf("reading coefficients table: %w", err)
	}
	defer rows.Close()

	named := make(map[string]float64)
	for rows.Next() {
		var feature string
		var weight float64
		if err := rows.Scan(&feature, &weight); err != nil {
			return nil, err
		}
		if _, dup := named[feature]; dup {
			return nil, fmt.Errorf("duplicate coefficient for %s", feature)
		}
		named[feature] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if m.Coefficients, err = coefficientsByName(named); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readDecisionTree(db *sql.DB) (Classifier, error) {
	rows, err := db.Query(`SELECT id, feature_idx, threshold, left_child, right_child, class_label, is_leaf
		FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reading nodes table: %w", err)
	}
	defer rows.Close()

	t := &DecisionTree{}
	for rows.Next() {
		var id int
		var n TreeNode
		if err := rows.Scan(&id, &n.FeatureIdx, &n.Threshold, &n.LeftChild, &n.RightChild, &n.ClassLabel, &n.IsLeaf); err != nil {
			return nil, err
		}
		if id != len(t.Nodes) {
			return nil, fmt.Errorf("node ids must be contiguous from 0, found %d at position %d", id, len(t.Nodes))
		}
		t.Nodes = append(t.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// metaFloat parses an optional numeric entry of the model table
func metaFloat(meta map[string]string, key string) (float64, error) {
	value, ok := meta[key]
	if !ok || value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("model %s %q is not a number", key, value)
	}
	return f, nil
}
