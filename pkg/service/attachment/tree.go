/*
 * @Description: 文件夹树的组装与祖先链查询
 * @Author: 安知鱼
 * @Date: 2026-01-17 10:26:41
 * @LastEditTime: 2026-01-17 10:26:41
 * @LastEditors: 安知鱼
 */
package attachment

import "github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"

// buildTree 把扁平列表组装成森林，输入已按 sort_order、id 排序，子节点沿用该顺序。
// 父节点不在列表中的文件夹作为根节点返回。
func buildTree(folders []*model.Folder) ([]*model.FolderNode, map[uint]*model.FolderNode) {
	nodes := make(map[uint]*model.FolderNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &model.FolderNode{Folder: *f}
	}
	roots := make([]*model.FolderNode, 0)
	for _, f := range folders {
		node := nodes[f.ID]
		parent, ok := nodes[f.ParentID]
		if f.ParentID == 0 || !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nodes
}

// depthOf 返回文件夹所在层级，根目录下的文件夹为 1
func depthOf(parents map[uint]uint, id uint) int {
	depth := 0
	seen := make(map[uint]bool)
	for id != 0 && !seen[id] {
		seen[id] = true
		depth++
		parent, ok := parents[id]
		if !ok {
			break
		}
		id = parent
	}
	return depth
}

// isAncestor 判断 ancestor 是否出现在 id 的祖先链（含 id 自身）上
func isAncestor(parents map[uint]uint, ancestor, id uint) bool {
	seen := make(map[uint]bool)
	for id != 0 && !seen[id] {
		if id == ancestor {
			return true
		}
		seen[id] = true
		id = parents[id]
	}
	return false
}
